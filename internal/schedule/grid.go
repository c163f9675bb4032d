package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DaysPerWeek is the number of business days shown on the board.
const DaysPerWeek = 5

const (
	firstHour = 8.0
	lastHour  = 16.0
	slotStep  = 0.5
)

// Weekdays are the board's column names, Monday first.
var Weekdays = [DaysPerWeek]string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi"}

var monthsFR = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var slotLabels = buildSlotLabels()

func buildSlotLabels() []string {
	var labels []string
	for h := firstHour; h <= lastHour; h += slotStep {
		labels = append(labels, FormatHalfHour(h))
	}
	return labels
}

// SlotLabels returns the half-hour labels of a business day, 8:00 to 16:00.
func SlotLabels() []string {
	out := make([]string, len(slotLabels))
	copy(out, slotLabels)
	return out
}

// FormatHalfHour renders a fractional hour as H:00 or H:30, without a
// leading zero.
func FormatHalfHour(h float64) string {
	hour := int(h)
	if h-float64(hour) == 0 {
		return fmt.Sprintf("%d:00", hour)
	}
	return fmt.Sprintf("%d:30", hour)
}

// IsGridLabel reports whether label is one of the board's slot labels.
func IsGridLabel(label string) bool {
	for _, l := range slotLabels {
		if l == label {
			return true
		}
	}
	return false
}

// ParseLabel returns the hour and minute of an H:MM label.
func ParseLabel(label string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(label, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid slot label %q", label)
	}
	if hour, err = strconv.Atoi(h); err != nil || hour < 0 || hour > 24 {
		return 0, 0, fmt.Errorf("invalid slot label %q", label)
	}
	if minute, err = strconv.Atoi(m); err != nil || minute < 0 || minute > 59 || len(m) != 2 {
		return 0, 0, fmt.Errorf("invalid slot label %q", label)
	}
	return hour, minute, nil
}

// labelMinutes orders labels chronologically; unparsable labels sort last.
func labelMinutes(label string) int {
	h, m, err := ParseLabel(label)
	if err != nil {
		return 1 << 30
	}
	return h*60 + m
}

// RoundToHalfHour maps a wall-clock time to its slot label: minutes below
// 15 round down to the hour, below 45 to the half hour, otherwise up to the
// next hour.
func RoundToHalfHour(t time.Time) string {
	hour, minute := t.Hour(), t.Minute()
	switch {
	case minute < 15:
		return fmt.Sprintf("%d:00", hour)
	case minute < 45:
		return fmt.Sprintf("%d:30", hour)
	default:
		return fmt.Sprintf("%d:00", hour+1)
	}
}

// SlotKey addresses one cell of the board.
type SlotKey struct {
	Day   int    `json:"day"`
	Label string `json:"slot"`
}

func (k SlotKey) Valid() bool {
	return k.Day >= 0 && k.Day < DaysPerWeek && k.Label != ""
}

// KeyFor derives the board cell of a timestamp. The day index follows the
// UTC weekday; the label follows the wall clock in loc. Weekend and zero
// timestamps have no cell and report false.
func KeyFor(t time.Time, loc *time.Location) (SlotKey, bool) {
	if t.IsZero() {
		return SlotKey{}, false
	}
	day := int(t.UTC().Weekday()) - 1
	if day < 0 || day >= DaysPerWeek {
		return SlotKey{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	return SlotKey{Day: day, Label: RoundToHalfHour(t.In(loc))}, true
}

// MondayOf returns midnight of the Monday starting t's week, in t's
// location. Sunday belongs to the week that started six days earlier.
func MondayOf(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	y, m, d := t.Date()
	return time.Date(y, m, d-(weekday-1), 0, 0, 0, 0, t.Location())
}

// Window is the Monday to Friday span of one week.
type Window [DaysPerWeek]time.Time

// WeekOf returns the business week containing ref.
func WeekOf(ref time.Time) Window {
	monday := MondayOf(ref)
	var w Window
	for i := range w {
		w[i] = monday.AddDate(0, 0, i)
	}
	return w
}

func (w Window) Start() time.Time {
	return w[0]
}

func (w Window) IsZero() bool {
	return w[0].IsZero()
}

// ISODate returns the YYYY-MM-DD date of a day of the week.
func (w Window) ISODate(day int) string {
	return ISODate(w[day])
}

// Shift moves the window by whole weeks.
func (w Window) Shift(weeks int) Window {
	return WeekOf(w[0].AddDate(0, 0, 7*weeks))
}

// DayOf returns the index of the ISO date within the window.
func (w Window) DayOf(iso string) (int, bool) {
	for i := range w {
		if ISODate(w[i]) == iso {
			return i, true
		}
	}
	return 0, false
}

func (w Window) Equal(other Window) bool {
	return w[0].Equal(other[0])
}

// Label renders the week as "3 juin 2024 au 7 juin 2024".
func (w Window) Label() string {
	return fmt.Sprintf("%s au %s", FormatDateLong(w[0]), FormatDateLong(w[DaysPerWeek-1]))
}

func ISODate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// FormatDateLong renders a date the French way, e.g. "4 juin 2024".
func FormatDateLong(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthsFR[t.Month()-1], t.Year())
}

// FormatMonth renders a month as "juin 2024".
func FormatMonth(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", monthsFR[month-1], year)
}

// SlotStart returns the start of a slot on date, in date's location.
func SlotStart(date time.Time, label string) (time.Time, error) {
	hour, minute, err := ParseLabel(label)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, date.Location()), nil
}
