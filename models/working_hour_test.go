package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultBusinessHours(t *testing.T) {
	bh := DefaultBusinessHours()
	// 2026-03-07 is a Saturday.
	at := func(day, hour, minute int) time.Time {
		return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
	}

	assert.False(t, bh.Contains(at(8, 12, 0)), "sunday is closed")
	assert.False(t, bh.Contains(at(7, 9, 0)), "saturday opens at 10")
	assert.True(t, bh.Contains(at(7, 10, 0)))
	assert.True(t, bh.Contains(at(7, 15, 0)))
	assert.True(t, bh.Contains(at(7, 15, 59)))
	assert.False(t, bh.Contains(at(7, 16, 0)), "saturday closes at 16")

	assert.True(t, bh.Contains(at(2, 9, 0)))
	assert.True(t, bh.Contains(at(6, 17, 0)))
	assert.False(t, bh.Contains(at(6, 18, 0)), "weekdays close at 18")
	assert.False(t, bh.Contains(at(4, 8, 59)))
}
