package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bcdservices/dashboard-api/internal/model"
)

func apt(id string, status model.AppointmentStatus) model.Appointment {
	return model.Appointment{ID: id, Status: status}
}

func TestResolveSlotStatePriority(t *testing.T) {
	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	blocked := NewBlockIndex([]model.BlockedDate{{Date: "2024-06-05", DayBlocked: true}})

	tests := []struct {
		name         string
		appointments []model.Appointment
		blocks       *BlockIndex
		now          time.Time
		want         SlotState
	}{
		{"free", nil, nil, now, SlotFree},
		{"past", nil, nil, date.Add(12 * time.Hour), SlotPast},
		{"blocked beats past", nil, blocked, date.Add(12 * time.Hour), SlotBlocked},
		{"occupied beats blocked", []model.Appointment{apt("1", "LIVRE")}, blocked, now, SlotOccupied},
		{"invoiced", []model.Appointment{apt("1", "FA-2024-001")}, nil, now, SlotInvoiced},
		{"active anywhere wins", []model.Appointment{
			apt("1", "FA-2024-001"), apt("2", "LIVRE"), apt("3", model.AppointmentStatusInProgress),
		}, blocked, now, SlotActive},
		{"invoiced after plain", []model.Appointment{apt("1", "LIVRE"), apt("2", "FA9")}, nil, now, SlotInvoiced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSlotState(date, "10:00", tt.appointments, tt.blocks, tt.now))
		})
	}
}

func TestResolveSlotStatePastBoundary(t *testing.T) {
	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, SlotPast, ResolveSlotState(date, "10:00", nil, nil, start))
	assert.Equal(t, SlotFree, ResolveSlotState(date, "10:00", nil, nil, start.Add(-time.Second)))
}

func TestSlotStateText(t *testing.T) {
	b, err := SlotActive.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "active", string(b))

	var s SlotState
	assert.NoError(t, s.UnmarshalText([]byte("blocked")))
	assert.Equal(t, SlotBlocked, s)
	assert.Error(t, s.UnmarshalText([]byte("nope")))

	assert.True(t, SlotInvoiced.HasAppointments())
	assert.False(t, SlotBlocked.HasAppointments())
	assert.True(t, SlotFree.Bookable())
	assert.False(t, SlotPast.Bookable())
}
