package model

import (
	"strings"
	"time"
)

type AppointmentStatus string

const (
	// AppointmentStatusInProgress marks work that is booked and not yet closed.
	AppointmentStatusInProgress AppointmentStatus = "EN COURS"

	// InvoicedStatusPrefix prefixes every status code of an invoiced order.
	InvoicedStatusPrefix = "FA"
)

func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusInProgress
}

func (s AppointmentStatus) IsInvoiced() bool {
	return strings.HasPrefix(string(s), InvoicedStatusPrefix)
}

type OrderKind string

const (
	OrderKindDelivery OrderKind = "delivery"
	OrderKindSweeping OrderKind = "sweeping"
)

// LineItem is one product line of an order. Category is resolved when the
// order is decoded and is not part of the wire format.
type LineItem struct {
	Name     string       `json:"name" binding:"required"`
	Quantity int          `json:"quantity" binding:"gte=0"`
	Price    float64      `json:"price,omitempty" binding:"gte=0"`
	City     string       `json:"city,omitempty"`
	Category ItemCategory `json:"-"`
}

type UserInfo struct {
	Nom        string `json:"nom"`
	Prenom     string `json:"prenom"`
	Adresse    string `json:"adresse"`
	CodePostal string `json:"codePostal"`
	Ville      string `json:"ville"`
	Email      string `json:"email"`
	Telephone  string `json:"telephone"`
}

// Appointment is the dashboard's read-through copy of a backend order.
type Appointment struct {
	ID          string            `json:"id"`
	UserName    string            `json:"userName"`
	City        string            `json:"city"`
	Items       []LineItem        `json:"items"`
	DeliveryFee float64           `json:"deliveryFee"`
	Discount    float64           `json:"discount"`
	CartTotal   float64           `json:"cartTotal"`
	Status      AppointmentStatus `json:"status"`
	UserInfo    UserInfo          `json:"userInfo"`
	Date        time.Time         `json:"date"`
}

// OrderRecord is the shape returned by the week orders endpoint.
type OrderRecord struct {
	ID          string            `json:"id"`
	Date        time.Time         `json:"date"`
	Items       []LineItem        `json:"items"`
	CartTotal   float64           `json:"cartTotal"`
	Status      AppointmentStatus `json:"status"`
	UserName    string            `json:"userName"`
	UserInfo    UserInfo          `json:"userInfo"`
	DeliveryFee float64           `json:"deliveryFee"`
	Discount    float64           `json:"discount"`
}

func (r OrderRecord) ToAppointment() Appointment {
	items := ResolveCategories(r.Items)
	city := ""
	if len(items) > 0 {
		city = items[0].City
	}
	return Appointment{
		ID:          r.ID,
		UserName:    r.UserName,
		City:        city,
		Items:       items,
		DeliveryFee: r.DeliveryFee,
		Discount:    r.Discount,
		CartTotal:   r.CartTotal,
		Status:      r.Status,
		UserInfo:    r.UserInfo,
		Date:        r.Date,
	}
}

type DeliverySlot struct {
	Date time.Time `json:"date"`
}

// OrderPayload is sent to the backend when an order is created or edited.
type OrderPayload struct {
	DeliverySlot DeliverySlot      `json:"deliverySlot"`
	CartItems    []LineItem        `json:"cartItems"`
	DeliveryFee  float64           `json:"deliveryFee"`
	Discount     float64           `json:"discount"`
	CartTotal    float64           `json:"cartTotal"`
	UserInfo     UserInfo          `json:"userInfo"`
	UserName     string            `json:"userName,omitempty"`
	Status       AppointmentStatus `json:"status,omitempty"`
}

// SavedOrder is the backend's echo of a persisted order. Older endpoints
// return the identifier as _id.
type SavedOrder struct {
	ID           string            `json:"id"`
	MongoID      string            `json:"_id"`
	DeliverySlot DeliverySlot      `json:"deliverySlot"`
	CartItems    []LineItem        `json:"cartItems"`
	DeliveryFee  float64           `json:"deliveryFee"`
	Discount     float64           `json:"discount"`
	CartTotal    float64           `json:"cartTotal"`
	UserInfo     UserInfo          `json:"userInfo"`
	UserName     string            `json:"userName"`
	Status       AppointmentStatus `json:"status"`
}

func (o SavedOrder) ToAppointment() Appointment {
	id := o.ID
	if id == "" {
		id = o.MongoID
	}
	name := o.UserName
	if name == "" {
		name = strings.TrimSpace(o.UserInfo.Prenom + " " + o.UserInfo.Nom)
	}
	items := ResolveCategories(o.CartItems)
	city := o.UserInfo.Ville
	if len(items) > 0 && items[0].City != "" {
		city = items[0].City
	}
	return Appointment{
		ID:          id,
		UserName:    name,
		City:        city,
		Items:       items,
		DeliveryFee: o.DeliveryFee,
		Discount:    o.Discount,
		CartTotal:   o.CartTotal,
		Status:      o.Status,
		UserInfo:    o.UserInfo,
		Date:        o.DeliverySlot.Date,
	}
}

// SaveAppointmentRequest is the dashboard's order editor submission. Date and
// Time are wall-clock values in the business location.
type SaveAppointmentRequest struct {
	ID          string            `json:"id"`
	Kind        OrderKind         `json:"kind" binding:"omitempty,oneof=delivery sweeping"`
	Date        string            `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string            `json:"time" binding:"required,datetime=15:04"`
	Items       []LineItem        `json:"items" binding:"dive"`
	DeliveryFee float64           `json:"deliveryFee" binding:"gte=0"`
	Discount    float64           `json:"discount" binding:"gte=0"`
	UserInfo    UserInfo          `json:"userInfo"`
	UserName    string            `json:"userName"`
	Status      AppointmentStatus `json:"status"`
}

// CartTotal mirrors the backend's pricing: items, plus fee, minus discount.
func (r SaveAppointmentRequest) CartTotal() float64 {
	total := 0.0
	for _, item := range r.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total + r.DeliveryFee - r.Discount
}
