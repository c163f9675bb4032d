package schedule

import (
	"sort"

	"github.com/bcdservices/dashboard-api/internal/model"
)

// BlockIndex holds blocked days and blocked slots keyed by ISO date. A date
// is present in days whenever it has blocked slots or a day flag.
type BlockIndex struct {
	days  map[string]bool
	slots map[string]map[string]struct{}
}

func NewBlockIndex(records []model.BlockedDate) *BlockIndex {
	idx := &BlockIndex{
		days:  make(map[string]bool),
		slots: make(map[string]map[string]struct{}),
	}
	for _, r := range records {
		idx.days[r.Date] = r.DayBlocked
		set := make(map[string]struct{}, len(r.BlockedTimes))
		for _, label := range r.BlockedTimes {
			set[label] = struct{}{}
		}
		idx.slots[r.Date] = set
	}
	return idx
}

func (b *BlockIndex) DayBlocked(iso string) bool {
	if b == nil {
		return false
	}
	return b.days[iso]
}

// HasDate reports whether iso has any entry in the blocked-day map.
func (b *BlockIndex) HasDate(iso string) bool {
	if b == nil {
		return false
	}
	_, ok := b.days[iso]
	return ok
}

func (b *BlockIndex) SlotBlocked(iso, label string) bool {
	if b == nil {
		return false
	}
	_, ok := b.slots[iso][label]
	return ok
}

// Blocked is true when the slot is in the date's blocked set or the whole
// date is flagged.
func (b *BlockIndex) Blocked(iso, label string) bool {
	return b.SlotBlocked(iso, label) || b.DayBlocked(iso)
}

// BlockedSlots lists a date's blocked labels in chronological order.
func (b *BlockIndex) BlockedSlots(iso string) []string {
	if b == nil {
		return nil
	}
	set, ok := b.slots[iso]
	if !ok {
		return nil
	}
	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return labelMinutes(labels[i]) < labelMinutes(labels[j])
	})
	return labels
}

// HasSlotEntry reports whether the date has an entry in the slot map.
func (b *BlockIndex) HasSlotEntry(iso string) bool {
	if b == nil {
		return false
	}
	_, ok := b.slots[iso]
	return ok
}

// BlockDay flags the date and replaces its blocked set with labels.
func (b *BlockIndex) BlockDay(iso string, labels []string) {
	b.days[iso] = true
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	b.slots[iso] = set
}

func (b *BlockIndex) UnblockDay(iso string) {
	delete(b.days, iso)
	delete(b.slots, iso)
}

func (b *BlockIndex) BlockSlot(iso, label string) {
	set, ok := b.slots[iso]
	if !ok {
		set = make(map[string]struct{})
		b.slots[iso] = set
	}
	set[label] = struct{}{}
	if _, ok := b.days[iso]; !ok {
		b.days[iso] = false
	}
}

// UnblockSlot removes one label. The day flag is cleared since the day is
// no longer fully blocked; the date disappears once its last label is gone.
func (b *BlockIndex) UnblockSlot(iso, label string) {
	set, ok := b.slots[iso]
	if !ok {
		delete(b.days, iso)
		return
	}
	delete(set, label)
	if len(set) == 0 {
		delete(b.slots, iso)
		delete(b.days, iso)
		return
	}
	b.days[iso] = false
}

func (b *BlockIndex) Clone() *BlockIndex {
	out := &BlockIndex{
		days:  make(map[string]bool, len(b.days)),
		slots: make(map[string]map[string]struct{}, len(b.slots)),
	}
	for iso, flag := range b.days {
		out.days[iso] = flag
	}
	for iso, set := range b.slots {
		cp := make(map[string]struct{}, len(set))
		for label := range set {
			cp[label] = struct{}{}
		}
		out.slots[iso] = cp
	}
	return out
}
