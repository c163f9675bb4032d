package schedule

import (
	"sort"
	"time"

	"github.com/bcdservices/dashboard-api/internal/model"
)

// Board is the week's appointments bucketed by cell. A bucket may hold
// several appointments; empty buckets are never kept.
type Board struct {
	loc     *time.Location
	buckets map[SlotKey][]model.Appointment
}

// NewBoard buckets appointments by KeyFor. Appointments without a weekday
// cell are returned as dropped.
func NewBoard(appointments []model.Appointment, loc *time.Location) (*Board, []model.Appointment) {
	b := &Board{loc: loc, buckets: make(map[SlotKey][]model.Appointment)}
	var dropped []model.Appointment
	for _, apt := range appointments {
		if !b.Add(apt) {
			dropped = append(dropped, apt)
		}
	}
	return b, dropped
}

func (b *Board) Location() *time.Location {
	return b.loc
}

// Add appends apt to its cell. It reports false when apt has no cell.
func (b *Board) Add(apt model.Appointment) bool {
	key, ok := KeyFor(apt.Date, b.loc)
	if !ok {
		return false
	}
	b.buckets[key] = append(b.buckets[key], apt)
	return true
}

// Upsert removes any copy of apt (by id) and adds it at its cell.
func (b *Board) Upsert(apt model.Appointment) bool {
	if apt.ID != "" {
		b.RemoveByID(apt.ID)
	}
	return b.Add(apt)
}

// Remove deletes the appointment with id from the cell at key.
func (b *Board) Remove(key SlotKey, id string) bool {
	bucket, ok := b.buckets[key]
	if !ok {
		return false
	}
	kept := bucket[:0:0]
	for _, apt := range bucket {
		if apt.ID != id {
			kept = append(kept, apt)
		}
	}
	if len(kept) == len(bucket) {
		return false
	}
	if len(kept) == 0 {
		delete(b.buckets, key)
	} else {
		b.buckets[key] = kept
	}
	return true
}

// RemoveByID deletes the appointment wherever it is.
func (b *Board) RemoveByID(id string) bool {
	for key := range b.buckets {
		if b.Remove(key, id) {
			return true
		}
	}
	return false
}

// Find locates an appointment by id.
func (b *Board) Find(id string) (SlotKey, model.Appointment, bool) {
	for key, bucket := range b.buckets {
		for _, apt := range bucket {
			if apt.ID == id {
				return key, apt, true
			}
		}
	}
	return SlotKey{}, model.Appointment{}, false
}

func (b *Board) At(key SlotKey) []model.Appointment {
	return b.buckets[key]
}

// Labels lists the occupied labels of a day in chronological order,
// including labels outside the grid.
func (b *Board) Labels(day int) []string {
	var labels []string
	for key := range b.buckets {
		if key.Day == day {
			labels = append(labels, key.Label)
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		return labelMinutes(labels[i]) < labelMinutes(labels[j])
	})
	return labels
}

// Occupied reports whether the cell holds at least one appointment.
func (b *Board) Occupied(key SlotKey) bool {
	return len(b.buckets[key]) > 0
}

// Day returns a day's appointments in grid order.
func (b *Board) Day(day int) []model.Appointment {
	var out []model.Appointment
	for _, label := range b.Labels(day) {
		out = append(out, b.buckets[SlotKey{Day: day, Label: label}]...)
	}
	return out
}

// Len is the number of appointments on the board.
func (b *Board) Len() int {
	n := 0
	for _, bucket := range b.buckets {
		n += len(bucket)
	}
	return n
}

func (b *Board) Clone() *Board {
	out := &Board{loc: b.loc, buckets: make(map[SlotKey][]model.Appointment, len(b.buckets))}
	for key, bucket := range b.buckets {
		out.buckets[key] = append([]model.Appointment(nil), bucket...)
	}
	return out
}
