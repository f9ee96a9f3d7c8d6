package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingTerminal(t *testing.T) {
	b := Booking{Status: BookingPending}
	assert.False(t, b.Terminal())

	b.Status = BookingConfirmed
	assert.False(t, b.Terminal())

	b.Status = BookingCompleted
	assert.True(t, b.Terminal())

	b.Status = BookingCancelled
	assert.True(t, b.Terminal())
}

func TestShiftCovers(t *testing.T) {
	shift := DoctorShift{
		StartTime: time.Date(2026, 3, 10, 6, 30, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC),
	}

	assert.True(t, shift.Covers(time.Date(2026, 3, 10, 6, 30, 0, 0, time.UTC)))
	assert.True(t, shift.Covers(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)))
	assert.False(t, shift.Covers(time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC)))
	assert.False(t, shift.Covers(time.Date(2026, 3, 10, 6, 29, 59, 0, time.UTC)))
}
