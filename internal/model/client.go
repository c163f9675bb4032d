package model

import "time"

type Client struct {
	ID         string `json:"_id"`
	Nom        string `json:"nom"`
	Prenom     string `json:"prenom"`
	Email      string `json:"email"`
	Telephone  string `json:"telephone"`
	Adresse    string `json:"adresse"`
	CodePostal string `json:"codePostal"`
	Ville      string `json:"ville"`
}

type ClientPage struct {
	Clients    []Client `json:"clients"`
	Page       int      `json:"page"`
	TotalPages int      `json:"totalPages"`
}

// ClientOrder is an order as listed in a client's history.
type ClientOrder struct {
	ID           string            `json:"_id"`
	CartItems    []LineItem        `json:"cartItems"`
	CartTotal    float64           `json:"cartTotal"`
	Status       AppointmentStatus `json:"status"`
	DeliverySlot *DeliverySlot     `json:"deliverySlot,omitempty"`
	CreatedAt    *time.Time        `json:"createdAt,omitempty"`
	UsedDate     *time.Time        `json:"usedDate,omitempty"`
	InvoiceURL   string            `json:"invoiceURL,omitempty"`
}

type ClientHistory struct {
	Orders              []ClientOrder `json:"orders"`
	Ramonages           []ClientOrder `json:"ramonages"`
	CompletedDeliveries []ClientOrder `json:"completedDeliveries"`
	CompletedSweepings  []ClientOrder `json:"completedSweepings"`
	CompletedSales      []ClientOrder `json:"completedSales"`
}
