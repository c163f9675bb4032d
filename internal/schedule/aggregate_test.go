package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcdservices/dashboard-api/internal/model"
)

func item(name string, qty int) model.LineItem {
	return model.LineItem{Name: name, Quantity: qty, Category: model.CategoryOf(name)}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, 3+day, hour, minute, 0, 0, time.UTC)
}

func sampleBoard(t *testing.T) *Board {
	t.Helper()
	board, dropped := NewBoard([]model.Appointment{
		{ID: "a", Date: at(0, 9, 0), CartTotal: 120, Items: []model.LineItem{
			item("Filet de bûchettes", 2), item("Stère en 33 cm", 1),
		}},
		{ID: "b", Date: at(0, 8, 0), CartTotal: 80, Items: []model.LineItem{
			item("Sac de granulés", 4), item("Stère en 50 cm", 2),
		}},
		{ID: "c", Date: at(2, 14, 30), CartTotal: 50.5, Items: []model.LineItem{
			item("Stère en 50 cm", 1), item("Stère de chêne", 3), item("Stère en 25 cm", 0),
		}},
		{ID: "d", Date: at(4, 11, 0), CartTotal: 20},
	}, time.UTC)
	require.Empty(t, dropped)
	return board
}

func TestAggregateDayOrdering(t *testing.T) {
	board := sampleBoard(t)

	got := AggregateDay(board, 0)
	assert.Equal(t, []string{"Stère en 50 cm", "Stère en 33 cm", "Filet de bûchettes", "Sac de granulés"}, names(got))
	assert.Equal(t, 2, got[0].Quantity)
	assert.Equal(t, 4, got[3].Quantity)
}

func TestAggregateDaySkipsZeroCatalogItems(t *testing.T) {
	board := sampleBoard(t)

	got := AggregateDay(board, 2)
	assert.Equal(t, []string{"Stère en 50 cm", "Stère de chêne"}, names(got))
	assert.Empty(t, AggregateDay(board, 1))
}

func TestAggregateWeek(t *testing.T) {
	board := sampleBoard(t)
	s := AggregateWeek(board)

	assert.Equal(t, []string{"Stère en 50 cm", "Stère en 33 cm", "Filet de bûchettes", "Sac de granulés", "Stère de chêne"}, names(s.Items))
	assert.Equal(t, []string{"Stère en 50 cm", "Stère en 33 cm", "Stère de chêne"}, names(s.Firewood))
	assert.Equal(t, []string{"Filet de bûchettes", "Sac de granulés"}, names(s.Others))
	assert.Equal(t, 3+1+3, s.FirewoodTotal)
	assert.InDelta(t, 270.5, s.Revenue, 1e-9)
	assert.InDelta(t, 200, s.DailyRevenue[0], 1e-9)
	assert.InDelta(t, 20, s.DailyRevenue[4], 1e-9)
}

func TestAggregateWeekMatchesDays(t *testing.T) {
	board := sampleBoard(t)
	s := AggregateWeek(board)

	perDay := map[string]int{}
	revenue := 0.0
	for day := 0; day < DaysPerWeek; day++ {
		for _, it := range AggregateDay(board, day) {
			perDay[it.Name] += it.Quantity
		}
		revenue += DailyRevenue(board, day)
	}
	for _, it := range s.Items {
		assert.Equal(t, perDay[it.Name], it.Quantity, it.Name)
	}
	assert.InDelta(t, revenue, WeeklyRevenue(board), 1e-9)
	assert.InDelta(t, revenue, s.Revenue, 1e-9)
}

func TestRevenueSumsToCents(t *testing.T) {
	board, _ := NewBoard([]model.Appointment{
		{ID: "a", Date: at(1, 9, 0), CartTotal: 0.1},
		{ID: "b", Date: at(1, 10, 0), CartTotal: 0.2},
		{ID: "c", Date: at(3, 10, 0), CartTotal: 1.005},
	}, time.UTC)

	assert.Equal(t, 0.3, DailyRevenue(board, 1))
	assert.Equal(t, 1.31, WeeklyRevenue(board))

	s := AggregateWeek(board)
	assert.Equal(t, 0.3, s.DailyRevenue[1])
	assert.Equal(t, 1.31, s.Revenue)
}

func TestAggregateEmptyBoard(t *testing.T) {
	board, _ := NewBoard(nil, time.UTC)
	s := AggregateWeek(board)
	assert.Empty(t, s.Items)
	assert.Zero(t, s.FirewoodTotal)
	assert.Zero(t, s.Revenue)
}

func names(items []ItemTotal) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}
