package booking

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/testutil"
	"github.com/meinhoongagan/wellness-portal/utils"
)

func TestSlotGrid(t *testing.T) {
	assert.Equal(t, []string{
		"09:00:00", "10:00:00", "11:00:00", "12:00:00", "13:00:00",
		"14:00:00", "15:00:00", "16:00:00", "17:00:00",
	}, SlotGrid)
}

func TestFreeSlots(t *testing.T) {
	free := FreeSlots([]string{"17:00:00", "09:00:00", "09:00:00", "12:30:00"})
	assert.Equal(t, []string{
		"10:00:00", "11:00:00", "12:00:00", "13:00:00", "14:00:00", "15:00:00", "16:00:00",
	}, free)

	assert.Equal(t, SlotGrid, FreeSlots(nil))
}

func TestAvailableSlotsComplementsBookedTimes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	otherTherapist := testutil.CreateTherapist(t, f.db, "second@example.com")

	testutil.CreateAppointment(t, f.db, f.client.ID, f.therapist.ID, f.service.ID, day, "09:00:00", models.StatusPending)
	testutil.CreateAppointment(t, f.db, f.client.ID, f.therapist.ID, f.service.ID, day, "13:00:00", models.StatusConfirmed)
	testutil.CreateAppointment(t, f.db, f.other.ID, f.therapist.ID, f.service.ID, day, "15:00:00", models.StatusCompleted)
	testutil.CreateAppointment(t, f.db, f.other.ID, f.therapist.ID, f.service.ID, day, "11:00:00", models.StatusCanceled)
	testutil.CreateAppointment(t, f.db, f.other.ID, otherTherapist.ID, f.service.ID, day, "10:00:00", models.StatusPending)
	testutil.CreateAppointment(t, f.db, f.other.ID, f.therapist.ID, f.service.ID, day.AddDate(0, 0, 1), "10:00:00", models.StatusPending)

	free, err := f.svc.AvailableSlots(ctx, f.therapist.ID, "2026-03-04")
	require.NoError(t, err)

	assert.True(t, sort.StringsAreSorted(free))
	assert.Equal(t, []string{
		"10:00:00", "11:00:00", "12:00:00", "14:00:00", "16:00:00", "17:00:00",
	}, free)

	var complement []string
	inFree := map[string]bool{}
	for _, s := range free {
		inFree[s] = true
	}
	for _, s := range SlotGrid {
		if !inFree[s] {
			complement = append(complement, s)
		}
	}
	assert.Equal(t, []string{"09:00:00", "13:00:00", "15:00:00"}, complement)
}

func TestAvailableSlotsRejectsBadDate(t *testing.T) {
	f := setup(t)

	_, err := f.svc.AvailableSlots(context.Background(), f.therapist.ID, "tomorrow")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}
