package model

import "time"

type ScheduleEventType string

const (
	EventDayBlocked         ScheduleEventType = "day.blocked"
	EventDayUnblocked       ScheduleEventType = "day.unblocked"
	EventSlotBlocked        ScheduleEventType = "slot.blocked"
	EventSlotUnblocked      ScheduleEventType = "slot.unblocked"
	EventAppointmentSaved   ScheduleEventType = "appointment.saved"
	EventAppointmentDeleted ScheduleEventType = "appointment.deleted"
)

// ScheduleEvent announces a successful schedule mutation to other
// dashboards and to operators watching the broker.
type ScheduleEvent struct {
	ID            string            `json:"id"`
	Type          ScheduleEventType `json:"type"`
	WeekStart     string            `json:"weekStart"`
	Date          string            `json:"date,omitempty"`
	Slots         []string          `json:"slots,omitempty"`
	AppointmentID string            `json:"appointmentId,omitempty"`
	At            time.Time         `json:"at"`
}
