package model

type RunExpirationSweepRequest struct{}

type RunExpirationSweepResponse struct {
	ConvertedCount        int `json:"converted_count"`
	DeletedLots           int `json:"deleted_lots"`
	CancelledReservations int `json:"cancelled_reservations"`
}
