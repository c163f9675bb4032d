package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// BlockedDate is an administrative block on a calendar day. BlockedTimes
// holds the blocked half-hour labels; DayBlocked is set when the whole day
// was blocked at once.
type BlockedDate struct {
	Date         string   `json:"date"`
	DayBlocked   bool     `json:"dayBlocked"`
	BlockedTimes []string `json:"blockedTimes"`
}

// UnmarshalJSON accepts both timestamps and plain ISO dates for date.
func (b *BlockedDate) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date         string   `json:"date"`
		DayBlocked   bool     `json:"dayBlocked"`
		BlockedTimes []string `json:"blockedTimes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := NormalizeISODate(raw.Date)
	if err != nil {
		return err
	}
	b.Date = date
	b.DayBlocked = raw.DayBlocked
	b.BlockedTimes = raw.BlockedTimes
	return nil
}

// NormalizeISODate reduces a timestamp or date string to YYYY-MM-DD.
func NormalizeISODate(s string) (string, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(time.DateOnly), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Format(time.DateOnly), nil
	}
	return "", fmt.Errorf("invalid blocked date %q", s)
}

type BlockRequest struct {
	Date         string   `json:"date"`
	BlockedTimes []string `json:"blockedTimes"`
	DayBlocked   bool     `json:"dayBlocked,omitempty"`
}

type UnblockRequest struct {
	Times []string `json:"times,omitempty"`
}
