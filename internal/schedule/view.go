package schedule

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bcdservices/dashboard-api/internal/model"
)

// AppointmentCard is what a booked cell displays for one appointment.
type AppointmentCard struct {
	ID       string                  `json:"id"`
	Customer string                  `json:"customer"`
	City     string                  `json:"city"`
	Status   model.AppointmentStatus `json:"status"`
	Items    []model.LineItem        `json:"items"`
	Total    float64                 `json:"cartTotal"`
	Date     time.Time               `json:"date"`
}

type SlotView struct {
	Label        string            `json:"slot"`
	State        SlotState         `json:"state"`
	Blocked      bool              `json:"blocked"`
	Appointments []AppointmentCard `json:"appointments,omitempty"`
}

type DayView struct {
	Index   int         `json:"index"`
	Name    string      `json:"name"`
	Date    string      `json:"date"`
	Title   string      `json:"title"`
	Blocked bool        `json:"blocked"`
	Slots   []SlotView  `json:"slots"`
	OffGrid []SlotView  `json:"offGrid,omitempty"`
	Items   []ItemTotal `json:"items"`
	Revenue float64     `json:"revenue"`
}

type WeekView struct {
	WeekStart string      `json:"weekStart"`
	Label     string      `json:"label"`
	Days      []DayView   `json:"days"`
	Summary   WeekSummary `json:"summary"`
	Errors    []string    `json:"errors,omitempty"`
}

// FormatName title-cases a customer name with French rules. Schedule cards
// and the client roster both go through it.
func FormatName(name string) string {
	return cases.Title(language.French).String(name)
}

func cardsFor(appointments []model.Appointment) []AppointmentCard {
	if len(appointments) == 0 {
		return nil
	}
	cards := make([]AppointmentCard, 0, len(appointments))
	for _, apt := range appointments {
		cards = append(cards, AppointmentCard{
			ID:       apt.ID,
			Customer: FormatName(apt.UserName),
			City:     apt.City,
			Status:   apt.Status,
			Items:    apt.Items,
			Total:    apt.CartTotal,
			Date:     apt.Date,
		})
	}
	return cards
}

// BuildSlotView resolves one cell of the window.
func BuildSlotView(w Window, board *Board, blocks *BlockIndex, key SlotKey, now time.Time) SlotView {
	date := w[key.Day]
	appointments := board.At(key)
	return SlotView{
		Label:        key.Label,
		State:        ResolveSlotState(date, key.Label, appointments, blocks, now),
		Blocked:      blocks.Blocked(ISODate(date), key.Label),
		Appointments: cardsFor(appointments),
	}
}

// BuildWeekView computes the full render model of the window. Cells are
// derived fresh from the board and the block index on every call.
func BuildWeekView(w Window, board *Board, blocks *BlockIndex, now time.Time) WeekView {
	summary := AggregateWeek(board)
	view := WeekView{
		WeekStart: ISODate(w.Start()),
		Label:     w.Label(),
		Days:      make([]DayView, 0, DaysPerWeek),
		Summary:   summary,
	}
	for day := 0; day < DaysPerWeek; day++ {
		iso := w.ISODate(day)
		dv := DayView{
			Index:   day,
			Name:    Weekdays[day],
			Date:    iso,
			Title:   Weekdays[day] + " " + FormatDateLong(w[day]),
			Blocked: blocks.DayBlocked(iso),
			Slots:   make([]SlotView, 0, len(slotLabels)),
			Items:   summary.DailyItems[day],
			Revenue: summary.DailyRevenue[day],
		}
		for _, label := range slotLabels {
			dv.Slots = append(dv.Slots, BuildSlotView(w, board, blocks, SlotKey{Day: day, Label: label}, now))
		}
		for _, label := range board.Labels(day) {
			if IsGridLabel(label) {
				continue
			}
			dv.OffGrid = append(dv.OffGrid, BuildSlotView(w, board, blocks, SlotKey{Day: day, Label: label}, now))
		}
		view.Days = append(view.Days, dv)
	}
	return view
}

// FreeLabels lists the grid labels of a day that hold no appointment.
func FreeLabels(board *Board, day int) []string {
	var free []string
	for _, label := range slotLabels {
		if !board.Occupied(SlotKey{Day: day, Label: label}) {
			free = append(free, label)
		}
	}
	return free
}
