package capacity

import "time"

const DateLayout = "2006-01-02"

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange builds a range from the calendar dates of start and end.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Date(start), End: Date(end)}
}

// ParseDateRange parses two YYYY-MM-DD strings.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e), nil
}

// Date truncates t to midnight UTC of the calendar date t falls on in its own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r DateRange) Valid() bool {
	return !r.Start.After(r.End)
}

func (r DateRange) Contains(t time.Time) bool {
	return r.Valid() && !t.Before(r.Start) && !t.After(r.End)
}

// Days counts calendar days in the range, zero when malformed.
func (r DateRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return int(Date(r.End).Sub(Date(r.Start)).Hours()/24) + 1
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// Overlap returns the intersection of a and b. Ranges that only share a
// boundary day overlap on that day; a malformed range overlaps nothing.
func Overlap(a, b DateRange) (DateRange, bool) {
	if !a.Valid() || !b.Valid() {
		return DateRange{}, false
	}

	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}

	if start.After(end) {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}

func Overlaps(a, b DateRange) bool {
	_, ok := Overlap(a, b)
	return ok
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	d := Date(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeekRange returns Monday..Sunday of the week containing t.
func WeekRange(t time.Time) DateRange {
	start := WeekStart(t)
	return DateRange{Start: start, End: start.AddDate(0, 0, 6)}
}

// WholeWeeks widens r to the Monday of its first week and the Sunday of its
// last. A malformed range is returned unchanged.
func WholeWeeks(r DateRange) DateRange {
	if !r.Valid() {
		return r
	}
	return DateRange{Start: WeekStart(r.Start), End: WeekStart(r.End).AddDate(0, 0, 6)}
}

// WeeksIn lists the start of every week touched by r.
func WeeksIn(r DateRange) []time.Time {
	if !r.Valid() {
		return nil
	}

	end := Date(r.End)
	var weeks []time.Time
	for w := WeekStart(r.Start); !w.After(end); w = w.AddDate(0, 0, 7) {
		weeks = append(weeks, w)
	}
	return weeks
}
