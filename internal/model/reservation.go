package model

import "time"

type Reservation struct {
	ID          string     `json:"id"`
	LotID       string     `json:"lot_id"`
	UserID      string     `json:"user_id"`
	Quantity    int        `json:"quantity"`
	TotalPrice  int64      `json:"total_price"`
	PickupPin   string     `json:"pickup_pin"`
	Status      string     `json:"status"`
	IsDonation  bool       `json:"is_donation"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type ReserveLotRequest struct {
	LotID      string `json:"lot_id"`
	Quantity   int    `json:"quantity"`
	IsDonation bool   `json:"is_donation"`
}

type ReserveLotResponse struct {
	ReservationID string `json:"reservation_id"`
	PickupPin     string `json:"pickup_pin"`
}

type CompleteReservationRequest struct {
	ReservationID string `json:"reservation_id"`
	PickupPin     string `json:"pickup_pin"`
}

type CompleteReservationResponse struct{}

type CancelReservationRequest struct {
	ReservationID string `json:"reservation_id"`
}

type CancelReservationResponse struct{}

type ResolveAbsenceRequest struct {
	ReservationID string `json:"reservation_id"`
	Action        string `json:"action"`
}

type ResolveAbsenceResponse struct{}

type GetMyReservationsRequest struct{}

type GetMyReservationsResponse struct {
	Reservations []Reservation `json:"reservations"`
}
