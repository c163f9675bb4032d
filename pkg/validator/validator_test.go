package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotRequest struct {
	Day   int    `json:"day" binding:"gte=0,lte=4"`
	Slot  string `json:"slot" binding:"required,slotlabel"`
	Items []item `json:"items" binding:"dive"`
}

type item struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"gte=0"`
}

func TestSlotLabelRule(t *testing.T) {
	v := New()
	for _, ok := range []string{"8:00", "8:30", "16:00", "17:00"} {
		assert.NoError(t, v.Struct(slotRequest{Slot: ok}), ok)
	}
	for _, bad := range []string{"08:00", "8:15", "8", "x:00", "123:00", ":30"} {
		assert.Error(t, v.Struct(slotRequest{Slot: bad}), bad)
	}
}

func TestFieldsUseJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(slotRequest{Day: 7, Slot: "9:00", Items: []item{{Name: "", Quantity: -1}}})
	require.Error(t, err)

	fields := Fields(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "day", fields[0].Field)
	assert.Equal(t, "items[0].name", fields[1].Field)
	assert.Equal(t, "is required", fields[1].Message)
	assert.Equal(t, "items[0].quantity", fields[2].Field)
	assert.Equal(t, "must not be negative", fields[2].Message)

	assert.Contains(t, Summary(err), "items[0].name is required")
}

func TestFieldsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Fields(errors.New("boom")))
	assert.Equal(t, "boom", Summary(errors.New("boom")))
}
