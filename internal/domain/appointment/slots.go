package appointment

import (
	"time"
)

type SlotState string

const (
	SlotPast      SlotState = "past"
	SlotBooked    SlotState = "booked"
	SlotAvailable SlotState = "available"
)

type Slot struct {
	Time   string    `json:"time"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status SlotState `json:"status"`
}

// SlotGrid is the fixed list of whole-hour starts offered for booking,
// StartHour..EndHour inclusive, in the salon's local time.
type SlotGrid struct {
	StartHour int
	EndHour   int
}

// Span is the window covering every slot of the day for the given duration.
func (g SlotGrid) Span(day time.Time, duration time.Duration) Window {
	first := time.Date(day.Year(), day.Month(), day.Day(), g.StartHour, 0, 0, 0, day.Location())
	last := time.Date(day.Year(), day.Month(), day.Day(), g.EndHour, 0, 0, 0, day.Location())
	return Window{Start: first.UTC(), End: last.Add(duration).UTC()}
}

// BuildSlots marks each slot of day. A slot is past when booking it would
// fail EnsureFuture, and booked when [slot, slot+duration) overlaps any
// busy window.
func (g SlotGrid) BuildSlots(
	day time.Time,
	duration time.Duration,
	now time.Time,
	minAdvance time.Duration,
	busy []Window,
) []Slot {
	loc := day.Location()
	slots := make([]Slot, 0, g.EndHour-g.StartHour+1)

	for h := g.StartHour; h <= g.EndHour; h++ {
		start := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, loc)
		w := Window{Start: start, End: start.Add(duration)}

		state := SlotAvailable
		switch {
		case EnsureFuture(start, now, minAdvance) != nil:
			state = SlotPast
		case overlapsAny(w, busy):
			state = SlotBooked
		}

		slots = append(slots, Slot{
			Time:   start.Format("15:04"),
			Start:  start,
			End:    w.End,
			Status: state,
		})
	}

	return slots
}

func overlapsAny(w Window, busy []Window) bool {
	for _, b := range busy {
		if w.Overlaps(b) {
			return true
		}
	}
	return false
}
