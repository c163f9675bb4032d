package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcdservices/dashboard-api/internal/model"
)

func TestNewBoardDropsWeekend(t *testing.T) {
	board, dropped := NewBoard([]model.Appointment{
		{ID: "mon", Date: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)},
		{ID: "sat", Date: time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC)},
		{ID: "sun", Date: time.Date(2024, 6, 9, 9, 0, 0, 0, time.UTC)},
	}, time.UTC)

	assert.Equal(t, 1, board.Len())
	require.Len(t, dropped, 2)
	assert.Equal(t, "sat", dropped[0].ID)
	assert.Equal(t, "sun", dropped[1].ID)
}

func TestBoardBucketsShareCell(t *testing.T) {
	board, _ := NewBoard([]model.Appointment{
		{ID: "1", Date: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)},
		{ID: "2", Date: time.Date(2024, 6, 3, 9, 10, 0, 0, time.UTC)},
	}, time.UTC)
	key := SlotKey{Day: 0, Label: "9:00"}
	assert.Len(t, board.At(key), 2)

	assert.True(t, board.Remove(key, "1"))
	assert.Len(t, board.At(key), 1)
	assert.True(t, board.Remove(key, "2"))
	assert.False(t, board.Occupied(key))
	assert.Empty(t, board.Labels(0))
	assert.False(t, board.Remove(key, "2"))
}

func TestBoardUpsertMovesAppointment(t *testing.T) {
	board, _ := NewBoard([]model.Appointment{
		{ID: "1", Date: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)},
	}, time.UTC)

	ok := board.Upsert(model.Appointment{ID: "1", Date: time.Date(2024, 6, 5, 14, 0, 0, 0, time.UTC)})
	assert.True(t, ok)
	assert.Equal(t, 1, board.Len())

	key, _, found := board.Find("1")
	require.True(t, found)
	assert.Equal(t, SlotKey{Day: 2, Label: "14:00"}, key)
}

func TestBoardCloneIsIndependent(t *testing.T) {
	board, _ := NewBoard([]model.Appointment{
		{ID: "1", Date: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)},
	}, time.UTC)
	cp := board.Clone()
	cp.RemoveByID("1")

	assert.Equal(t, 1, board.Len())
	assert.Zero(t, cp.Len())
}
