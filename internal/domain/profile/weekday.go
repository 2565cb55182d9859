package profile

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a bitmask of time.Weekday values (bit 0 = Sunday).
type WeekdaySet uint8

const allWeekdays WeekdaySet = 1<<7 - 1

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

// ParseWeekdays accepts short or long English day names, case-insensitive.
func ParseWeekdays(names []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, n := range names {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", n)
		}
		s = s.Add(d)
	}
	return s, nil
}

func (s WeekdaySet) Add(d time.Weekday) WeekdaySet {
	if d < time.Sunday || d > time.Saturday {
		return s
	}
	return s | 1<<uint(d)
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Intersect(o WeekdaySet) WeekdaySet { return s & o & allWeekdays }
func (s WeekdaySet) Union(o WeekdaySet) WeekdaySet     { return (s | o) & allWeekdays }
func (s WeekdaySet) Empty() bool                       { return s&allWeekdays == 0 }

func (s WeekdaySet) Len() int {
	n := 0
	for v := s & allWeekdays; v != 0; v &= v - 1 {
		n++
	}
	return n
}

func (s WeekdaySet) Days() []time.Weekday {
	out := make([]time.Weekday, 0, s.Len())
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s WeekdaySet) Names() []string {
	days := s.Days()
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, strings.ToLower(d.String()[:3]))
	}
	return out
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *WeekdaySet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	parsed, err := ParseWeekdays(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
