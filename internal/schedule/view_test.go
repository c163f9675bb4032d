package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcdservices/dashboard-api/internal/model"
)

func TestBuildWeekViewActiveSlot(t *testing.T) {
	w := WeekOf(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	board, _ := NewBoard([]model.Appointment{{
		ID:        "o1",
		UserName:  "jean DUPONT",
		Date:      time.Date(2024, 6, 4, 10, 5, 0, 0, time.UTC),
		Status:    model.AppointmentStatusInProgress,
		CartTotal: 240,
		Items:     []model.LineItem{item("Stère en 50 cm", 3)},
	}}, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	view := BuildWeekView(w, board, NewBlockIndex(nil), now)

	require.Len(t, view.Days, DaysPerWeek)
	assert.Equal(t, "2024-06-03", view.WeekStart)
	tuesday := view.Days[1]
	assert.Equal(t, "Mardi", tuesday.Name)
	assert.Equal(t, "Mardi 4 juin 2024", tuesday.Title)
	require.Len(t, tuesday.Slots, 17)

	for _, day := range view.Days {
		for _, slot := range day.Slots {
			if day.Index == 1 && slot.Label == "10:00" {
				assert.Equal(t, SlotActive, slot.State)
				require.Len(t, slot.Appointments, 1)
				assert.Equal(t, "Jean Dupont", slot.Appointments[0].Customer)
				continue
			}
			assert.Equal(t, SlotFree, slot.State, "%s %s", day.Name, slot.Label)
		}
	}

	assert.Equal(t, []ItemTotal{{Name: "Stère en 50 cm", Quantity: 3, Category: model.ItemCategoryFirewood}}, AggregateDay(board, 1))
	assert.Equal(t, tuesday.Items, AggregateDay(board, 1))
	assert.InDelta(t, 240, tuesday.Revenue, 1e-9)
	assert.InDelta(t, 240, view.Summary.Revenue, 1e-9)
}

func TestBuildWeekViewBlockedDay(t *testing.T) {
	w := WeekOf(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	board, _ := NewBoard(nil, time.UTC)
	blocks := NewBlockIndex([]model.BlockedDate{
		{Date: "2024-06-05", DayBlocked: true, BlockedTimes: SlotLabels()},
	})
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	view := BuildWeekView(w, board, blocks, now)
	wednesday := view.Days[2]
	assert.True(t, wednesday.Blocked)
	for _, slot := range wednesday.Slots {
		assert.Equal(t, SlotBlocked, slot.State, slot.Label)
	}

	blocks.UnblockSlot("2024-06-05", "9:00")
	view = BuildWeekView(w, board, blocks, now)
	wednesday = view.Days[2]

	assert.False(t, wednesday.Blocked)
	assert.True(t, blocks.HasDate("2024-06-05"))
	blockedCount := 0
	for _, slot := range wednesday.Slots {
		if slot.State == SlotBlocked {
			blockedCount++
		}
		if slot.Label == "9:00" {
			assert.Equal(t, SlotFree, slot.State)
		}
	}
	assert.Equal(t, 16, blockedCount)
}

func TestBuildWeekViewOffGrid(t *testing.T) {
	w := WeekOf(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	board, _ := NewBoard([]model.Appointment{
		{ID: "late", Date: time.Date(2024, 6, 7, 16, 50, 0, 0, time.UTC), Status: "LIVRE"},
	}, time.UTC)

	view := BuildWeekView(w, board, nil, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	friday := view.Days[4]
	require.Len(t, friday.OffGrid, 1)
	assert.Equal(t, "17:00", friday.OffGrid[0].Label)
	assert.Equal(t, SlotOccupied, friday.OffGrid[0].State)
}

func TestPastSlots(t *testing.T) {
	w := WeekOf(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	board, _ := NewBoard(nil, time.UTC)
	now := time.Date(2024, 6, 4, 10, 10, 0, 0, time.UTC)

	view := BuildWeekView(w, board, nil, now)
	for _, slot := range view.Days[0].Slots {
		assert.Equal(t, SlotPast, slot.State)
	}
	assert.Equal(t, SlotPast, view.Days[1].Slots[4].State, view.Days[1].Slots[4].Label)
	assert.Equal(t, SlotFree, view.Days[1].Slots[5].State, view.Days[1].Slots[5].Label)
	assert.Equal(t, SlotFree, view.Days[4].Slots[0].State)
}

func TestFreeLabels(t *testing.T) {
	board, _ := NewBoard([]model.Appointment{
		{ID: "x", Date: time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)},
	}, time.UTC)
	free := FreeLabels(board, 0)
	assert.Len(t, free, 16)
	assert.NotContains(t, free, "8:00")
	assert.Len(t, FreeLabels(board, 1), 17)
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "Marie Claire Durand", FormatName("marie CLAIRE durand"))
	assert.Equal(t, "Élodie", FormatName("élodie"))
	assert.Equal(t, "Jean-Pierre Lefèvre", FormatName("jean-pierre LEFÈVRE"))
	assert.Equal(t, "", FormatName(""))
}
