// Package dto defines request and response types for the HTTP API.
package dto

import (
	"time"

	"github.com/adwall/adwall/internal/model"
)

// CreateAdRequest is the body for POST /api/ads.
type CreateAdRequest struct {
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	Content string   `json:"content"`
	URL     string   `json:"url"`
	Pricing *float64 `json:"pricing"`
	Videos  []string `json:"videos"`
}

// UpdateAdRequest is the body for PUT /api/ads/{id} and the optional
// override body for POST /api/ads/{id}/copy. Nil fields are untouched.
type UpdateAdRequest struct {
	Title   *string   `json:"title"`
	Author  *string   `json:"author"`
	Content *string   `json:"content"`
	URL     *string   `json:"url"`
	Pricing *float64  `json:"pricing"`
	Videos  *[]string `json:"videos"`
}

// AdResponse is the wire representation of one ad.
type AdResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Content   string    `json:"content,omitempty"`
	URL       string    `json:"url"`
	Pricing   float64   `json:"pricing"`
	Clicked   int64     `json:"clicked"`
	Videos    []string  `json:"videos"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UploadResponse lists the servable URLs of stored video files.
type UploadResponse struct {
	URLs []string `json:"urls"`
}

// ToAdResponse converts a domain ad to its wire representation.
func ToAdResponse(ad *model.Ad) AdResponse {
	videos := ad.Videos
	if videos == nil {
		videos = []string{}
	}
	return AdResponse{
		ID:        ad.ID,
		Title:     ad.Title,
		Author:    ad.Author,
		Content:   ad.Content,
		URL:       ad.URL,
		Pricing:   ad.Pricing,
		Clicked:   ad.Clicked,
		Videos:    videos,
		CreatedAt: ad.CreatedAt,
		UpdatedAt: ad.UpdatedAt,
	}
}

// ToAdListResponse converts a slice of domain ads, preserving order.
func ToAdListResponse(ads []model.Ad) []AdResponse {
	out := make([]AdResponse, 0, len(ads))
	for i := range ads {
		out = append(out, ToAdResponse(&ads[i]))
	}
	return out
}
