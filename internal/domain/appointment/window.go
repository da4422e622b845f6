package appointment

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// Window is the half-open interval [Start, End) an appointment occupies.
type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(start time.Time, durationMin int) Window {
	start = timezone.Normalize(start)
	return Window{
		Start: start,
		End:   start.Add(time.Duration(durationMin) * time.Minute),
	}
}

func WindowOf(ap *models.Appointment) Window {
	return Window{Start: ap.AppointmentDate, End: ap.EndTime}
}

// Overlaps is the same predicate the repository evaluates in SQL:
// a.start < b.end AND a.end > b.start.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}

// BlockingPolicy decides which statuses occupy a window.
// Confirmed appointments always block.
type BlockingPolicy struct {
	statuses map[Status]struct{}
}

func NewBlockingPolicy(statuses []string) BlockingPolicy {
	p := BlockingPolicy{statuses: map[Status]struct{}{StatusConfirmed: {}}}
	for _, raw := range statuses {
		if s := Status(raw); s.IsValid() {
			p.statuses[s] = struct{}{}
		}
	}
	return p
}

func (p BlockingPolicy) Blocks(s Status) bool {
	_, ok := p.statuses[s]
	return ok
}

// Statuses returns the blocking set in a stable order for SQL.
func (p BlockingPolicy) Statuses() []string {
	out := make([]string, 0, len(p.statuses))
	for s := range p.statuses {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}
