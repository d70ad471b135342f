package clmm

import "time"

// DateWindow is an inclusive start, exclusive end range used to scope a
// replay run (spec §1's "date utilities used to bucket replay windows"),
// parsed from the CLI's `replay <startDate> <endDate>` arguments.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// dateLayout is the CLI's accepted date format: a plain calendar date with
// no time-of-day component, since replay windows bucket by day.
const dateLayout = "2006-01-02"

// ParseDateWindow parses two YYYY-MM-DD strings into a DateWindow, failing
// if end does not come after start.
func ParseDateWindow(startDate, endDate string) (DateWindow, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return DateWindow{}, wrapErr(ErrKindCorrupt, "parse start date", err)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return DateWindow{}, wrapErr(ErrKindCorrupt, "parse end date", err)
	}
	if !end.After(start) {
		return DateWindow{}, newErr(ErrKindCorrupt, "end date must be after start date")
	}
	return DateWindow{Start: start, End: end}, nil
}

// Contains reports whether t falls within [Start, End).
func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// FilterLiquidityEvents returns the subset of events whose Date falls
// within the window.
func (w DateWindow) FilterLiquidityEvents(events []LiquidityEvent) []LiquidityEvent {
	out := make([]LiquidityEvent, 0, len(events))
	for _, e := range events {
		if w.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// FilterSwapEvents returns the subset of events whose Date falls within the
// window.
func (w DateWindow) FilterSwapEvents(events []SwapEvent) []SwapEvent {
	out := make([]SwapEvent, 0, len(events))
	for _, e := range events {
		if w.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}
