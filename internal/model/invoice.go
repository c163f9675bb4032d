package model

import "time"

type InvoiceFilter string

const (
	InvoiceFilterAll                 InvoiceFilter = "all"
	InvoiceFilterCompletedDeliveries InvoiceFilter = "completedDeliveries"
	InvoiceFilterCompletedSweepings  InvoiceFilter = "completedSweepings"
	InvoiceFilterCompletedSales      InvoiceFilter = "completedSales"
)

func (f InvoiceFilter) Valid() bool {
	switch f {
	case InvoiceFilterAll, InvoiceFilterCompletedDeliveries, InvoiceFilterCompletedSweepings, InvoiceFilterCompletedSales:
		return true
	}
	return false
}

type Invoice struct {
	ID            string     `json:"_id"`
	InvoiceNumber string     `json:"invoiceNumber"`
	InvoiceURL    string     `json:"invoiceURL"`
	Nom           string     `json:"nom"`
	Prenom        string     `json:"prenom"`
	CartTotal     float64    `json:"cartTotal"`
	UsedDate      *time.Time `json:"usedDate,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// RevenueDate is the date an invoice counts towards: when it was used,
// otherwise when it was created.
func (i Invoice) RevenueDate() (time.Time, bool) {
	if i.UsedDate != nil {
		return *i.UsedDate, true
	}
	if i.CreatedAt != nil {
		return *i.CreatedAt, true
	}
	return time.Time{}, false
}

type InvoiceQuery struct {
	Month  string        `form:"month" binding:"omitempty,datetime=2006-01"`
	Day    string        `form:"day" binding:"omitempty,datetime=2006-01-02"`
	Search string        `form:"search"`
	Filter InvoiceFilter `form:"filter"`
}

// EstimatedSale is a booked order that has not been invoiced yet.
type EstimatedSale struct {
	ID           string       `json:"_id"`
	CartTotal    float64      `json:"cartTotal"`
	DeliverySlot DeliverySlot `json:"deliverySlot"`
}

// MonthRevenue is one point of the revenue chart. A nil series value means
// the month has no data in that series.
type MonthRevenue struct {
	Month     string   `json:"month"`
	Label     string   `json:"label"`
	Actual    *float64 `json:"actual"`
	Estimated *float64 `json:"estimated"`
	Previous  *float64 `json:"previousYear"`
}

type RevenueReport struct {
	FiscalYearStart string         `json:"fiscalYearStart"`
	FiscalYearEnd   string         `json:"fiscalYearEnd"`
	AnnualRevenue   float64        `json:"annualRevenue"`
	Months          []MonthRevenue `json:"months"`
	Errors          []string       `json:"errors,omitempty"`
}
