package model

import "time"

type Lot struct {
	ID                string    `json:"id"`
	MerchantID        string    `json:"merchant_id"`
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	OriginalPrice     int64     `json:"original_price"`
	DiscountedPrice   int64     `json:"discounted_price"`
	QuantityTotal     int       `json:"quantity_total"`
	QuantityReserved  int       `json:"quantity_reserved"`
	QuantitySold      int       `json:"quantity_sold"`
	QuantityAvailable int       `json:"quantity_available"`
	PickupStart       time.Time `json:"pickup_start"`
	PickupEnd         time.Time `json:"pickup_end"`
	IsFree            bool      `json:"is_free"`
	Status            string    `json:"status"`
	RequiresColdChain bool      `json:"requires_cold_chain"`
	IsUrgent          bool      `json:"is_urgent"`
	ImageURLs         []string  `json:"image_urls"`
}

type CreateLotRequest struct {
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	OriginalPrice     int64     `json:"original_price"`
	DiscountedPrice   int64     `json:"discounted_price"`
	QuantityTotal     int       `json:"quantity_total"`
	PickupStart       time.Time `json:"pickup_start"`
	PickupEnd         time.Time `json:"pickup_end"`
	IsFree            bool      `json:"is_free"`
	RequiresColdChain bool      `json:"requires_cold_chain"`
	IsUrgent          bool      `json:"is_urgent"`
	ImageURLs         []string  `json:"image_urls"`
}

type CreateLotResponse struct {
	ID string `json:"id"`
}

type UploadLotImageRequest struct{}

type UploadLotImageResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
}

type GetLotRequest struct {
	ID string `form:"id" json:"id"`
}

type GetLotResponse struct {
	Lot Lot `json:"lot"`
}

type GetLotsRequest struct {
	FreeOnly bool `form:"free_only" json:"free_only"`
	Offset   int  `form:"offset" json:"offset"`
	Limit    int  `form:"limit" json:"limit"`
}

type GetLotsResponse struct {
	Lots []Lot `json:"lots"`
}
