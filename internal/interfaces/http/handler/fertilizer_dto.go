package handler

import "time"

// FetchLocationRequest is the body of POST /fertilizer/fetch-location-data
type FetchLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,latitude" example:"18.52"`
	Longitude *float64 `json:"longitude" binding:"required,longitude" example:"73.85"`
}

// ReportLinkResponse is returned for ?delivery=url
type ReportLinkResponse struct {
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type reportQuery struct {
	Delivery string `form:"delivery" binding:"omitempty,oneof=inline url"`
}
