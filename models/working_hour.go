package models

import (
	"time"
)

// WorkingHours is the opening window of one weekday. Start is inclusive and
// End is exclusive, both "HH:MM" in 24h.
type WorkingHours struct {
	DayOfWeek time.Weekday
	StartTime string
	EndTime   string
	IsWorkDay bool
}

// BusinessHours is the clinic's weekly opening table indexed by weekday.
type BusinessHours [7]WorkingHours

// DefaultBusinessHours: Mon-Fri 09:00-18:00, Sat 10:00-16:00, Sun closed.
func DefaultBusinessHours() BusinessHours {
	var bh BusinessHours
	for d := time.Sunday; d <= time.Saturday; d++ {
		bh[d] = WorkingHours{DayOfWeek: d, StartTime: "09:00", EndTime: "18:00", IsWorkDay: true}
	}
	bh[time.Saturday] = WorkingHours{DayOfWeek: time.Saturday, StartTime: "10:00", EndTime: "16:00", IsWorkDay: true}
	bh[time.Sunday] = WorkingHours{DayOfWeek: time.Sunday}
	return bh
}

// Contains reports whether t falls inside the window of t's weekday.
func (bh BusinessHours) Contains(t time.Time) bool {
	wh := bh[t.Weekday()]
	if !wh.IsWorkDay {
		return false
	}
	open, err := time.Parse("15:04", wh.StartTime)
	if err != nil {
		return false
	}
	closing, err := time.Parse("15:04", wh.EndTime)
	if err != nil {
		return false
	}

	minute := t.Hour()*60 + t.Minute()
	return minute >= open.Hour()*60+open.Minute() && minute < closing.Hour()*60+closing.Minute()
}
