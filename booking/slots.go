package booking

import (
	"context"
	"time"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// SlotGrid lists the hourly appointment starts, 09:00 through 17:00.
var SlotGrid = func() []string {
	slots := make([]string, 0, 9)
	for hour := 9; hour <= 17; hour++ {
		slots = append(slots, time.Date(0, 1, 1, hour, 0, 0, 0, time.UTC).Format(models.TimeLayout))
	}
	return slots
}()

// BookedTimesLister returns the times a therapist is booked on a date.
type BookedTimesLister interface {
	BookedTimes(ctx context.Context, therapistID uint, date string) ([]string, error)
}

// FreeSlots removes booked from SlotGrid, keeping the grid's ascending order.
func FreeSlots(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	free := make([]string, 0, len(SlotGrid))
	for _, slot := range SlotGrid {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free
}

// AvailableSlots returns the therapist's free grid slots on date.
func AvailableSlots(ctx context.Context, store BookedTimesLister, therapistID uint, date string) ([]string, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, utils.Validation("Invalid date, expected YYYY-MM-DD")
	}

	booked, err := store.BookedTimes(ctx, therapistID, day.Format(models.DateLayout))
	if err != nil {
		return nil, utils.Persistence("available slots", err)
	}
	return FreeSlots(booked), nil
}
