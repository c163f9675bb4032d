package schedule

import (
	"fmt"
	"time"

	"github.com/bcdservices/dashboard-api/internal/model"
)

// SlotState is the render state of one board cell.
type SlotState int

const (
	SlotFree SlotState = iota
	SlotPast
	SlotBlocked
	SlotOccupied
	SlotInvoiced
	SlotActive
)

var slotStateNames = map[SlotState]string{
	SlotFree:     "free",
	SlotPast:     "past",
	SlotBlocked:  "blocked",
	SlotOccupied: "occupied",
	SlotInvoiced: "invoiced",
	SlotActive:   "active",
}

func (s SlotState) String() string {
	if name, ok := slotStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SlotState(%d)", int(s))
}

func (s SlotState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SlotState) UnmarshalText(text []byte) error {
	for state, name := range slotStateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown slot state %q", text)
}

// HasAppointments reports whether the state comes from a booked slot.
func (s SlotState) HasAppointments() bool {
	return s == SlotActive || s == SlotInvoiced || s == SlotOccupied
}

// Bookable reports whether a new appointment may be placed in the slot.
func (s SlotState) Bookable() bool {
	return s == SlotFree
}

// ResolveSlotState decides the state of the cell (date, label). The first
// matching rule wins: appointments, then blocks, then the clock.
func ResolveSlotState(date time.Time, label string, appointments []model.Appointment, blocks *BlockIndex, now time.Time) SlotState {
	if len(appointments) > 0 {
		return classifyAppointments(appointments)
	}

	if blocks.Blocked(ISODate(date), label) {
		return SlotBlocked
	}

	start, err := SlotStart(date, label)
	if err == nil && !start.After(now) {
		return SlotPast
	}
	return SlotFree
}

// classifyAppointments picks the most urgent status present in the slot,
// independent of position.
func classifyAppointments(appointments []model.Appointment) SlotState {
	invoiced := false
	for _, apt := range appointments {
		if apt.Status.IsActive() {
			return SlotActive
		}
		if apt.Status.IsInvoiced() {
			invoiced = true
		}
	}
	if invoiced {
		return SlotInvoiced
	}
	return SlotOccupied
}
