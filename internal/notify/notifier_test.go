package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func testInfo() AppointmentInfo {
	return AppointmentInfo{
		Email:       "anna@example.com",
		Name:        "Anna",
		ServiceName: "Manicure",
		Start:       time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC),
		Notes:       "<b>nude</b>",
	}
}

func TestDispatcher_DeliversInLanguage(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, logrus.New(), 10)

	d.AppointmentCreated("en", testInfo())
	d.AppointmentConfirmed("pl", testInfo())
	d.AppointmentCancelled("xx", testInfo())
	d.Close()

	require.Len(t, sender.msgs, 3)
	assert.Equal(t, "Your booking was received", sender.msgs[0].Subject)
	assert.Equal(t, "Twoja rezerwacja jest potwierdzona", sender.msgs[1].Subject)
	assert.Equal(t, "Ваш запис скасовано", sender.msgs[2].Subject)
	assert.Contains(t, sender.msgs[0].HTML, "02.11.2026 10:00")
	assert.Contains(t, sender.msgs[0].HTML, "&lt;b&gt;nude&lt;/b&gt;")
	assert.Equal(t, "anna@example.com", sender.msgs[0].To)
}

func TestDispatcher_SkipsMissingRecipient(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, logrus.New(), 10)

	info := testInfo()
	info.Email = ""
	d.AppointmentCreated("ua", info)
	d.Close()

	assert.Empty(t, sender.msgs)
}

func TestDispatcher_SendFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, logrus.New(), 10)

	d.CoursePurchased("ua", CourseInfo{Email: "a@b.c", CourseName: "Nails 101", Amount: 150000, Currency: "uah"})
	d.Close()

	require.Len(t, sender.msgs, 1)
	assert.Contains(t, sender.msgs[0].HTML, "1500.00 UAH")

	assert.NotPanics(t, func() { d.AppointmentCreated("ua", testInfo()) })
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "10.05 EUR", FormatAmount(1005, "eur"))
	assert.Equal(t, "-0.50 UAH", FormatAmount(-50, "uah"))
}
