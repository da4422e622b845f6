// Package notify sends appointment and course e-mails without ever
// blocking or failing the request that triggered them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/salon-booking/internal/metrics"
)

type Kind string

const (
	KindAppointmentCreated   Kind = "appointment_created"
	KindAppointmentConfirmed Kind = "appointment_confirmed"
	KindAppointmentCancelled Kind = "appointment_cancelled"
	KindCoursePurchased      Kind = "course_purchased"
)

type Message struct {
	Kind    Kind
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type AppointmentInfo struct {
	Email       string
	Name        string
	ServiceName string
	Start       time.Time
	Status      string
	Notes       string
}

type CourseInfo struct {
	Email      string
	CourseName string
	Amount     int
	Currency   string
}

type Notifier interface {
	AppointmentCreated(lang string, info AppointmentInfo)
	AppointmentConfirmed(lang string, info AppointmentInfo)
	AppointmentCancelled(lang string, info AppointmentInfo)
	CoursePurchased(lang string, info CourseInfo)
}

// Dispatcher renders messages on the caller's goroutine and delivers them
// from one background worker. A full queue drops the message.
type Dispatcher struct {
	sender  Sender
	log     logrus.FieldLogger
	timeout time.Duration
	queue   chan Message
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender Sender, log logrus.FieldLogger, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 100
	}
	d := &Dispatcher{
		sender:  sender,
		log:     log,
		timeout: 30 * time.Second,
		queue:   make(chan Message, queueSize),
		done:    make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.sender.Send(ctx, msg)
		cancel()

		entry := d.log.WithFields(logrus.Fields{"kind": msg.Kind, "to": msg.To})
		if err != nil {
			metrics.EmailsSent.WithLabelValues(string(msg.Kind), "failed").Inc()
			entry.WithError(err).Warn("email delivery failed")
			continue
		}
		metrics.EmailsSent.WithLabelValues(string(msg.Kind), "sent").Inc()
		entry.Debug("email sent")
	}
}

func (d *Dispatcher) enqueue(msg Message) {
	if msg.To == "" {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- msg:
	default:
		metrics.EmailsSent.WithLabelValues(string(msg.Kind), "dropped").Inc()
		d.log.WithField("kind", msg.Kind).Warn("email queue full, dropping message")
	}
}

func (d *Dispatcher) appointment(kind Kind, lang string, info AppointmentInfo) {
	msg, err := renderAppointment(kind, lang, info)
	if err != nil {
		d.log.WithError(err).WithField("kind", kind).Error("render email")
		return
	}
	d.enqueue(msg)
}

func (d *Dispatcher) AppointmentCreated(lang string, info AppointmentInfo) {
	d.appointment(KindAppointmentCreated, lang, info)
}

func (d *Dispatcher) AppointmentConfirmed(lang string, info AppointmentInfo) {
	d.appointment(KindAppointmentConfirmed, lang, info)
}

func (d *Dispatcher) AppointmentCancelled(lang string, info AppointmentInfo) {
	d.appointment(KindAppointmentCancelled, lang, info)
}

func (d *Dispatcher) CoursePurchased(lang string, info CourseInfo) {
	msg, err := renderCourse(lang, info)
	if err != nil {
		d.log.WithError(err).Error("render course email")
		return
	}
	d.enqueue(msg)
}

// Close stops accepting messages and waits until the queue is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

var _ Notifier = (*Dispatcher)(nil)
