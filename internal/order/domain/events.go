package domain

import "time"

type OrderPlaced struct {
	OrderID       string
	ProductID     string
	Quantity      int
	TotalCents    int64
	CustomerEmail string
}

type OrderCancelled struct {
	OrderID     string
	Reason      string
	CancelledAt time.Time
}

type PaymentStatusChanged struct {
	OrderID       string
	PaymentID     string
	PaymentStatus PaymentStatus
	EventAt       time.Time
}
