// Package model defines domain entities for the application.
package model

import "time"

// MaxVideosPerAd caps how many video assets one ad may carry.
const MaxVideosPerAd = 3

// Ad represents one advertisement in the catalog.
type Ad struct {
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

// Clone returns a deep copy of the ad. The Videos slice is copied so
// callers can never mutate a record shared with the store snapshot.
func (a Ad) Clone() Ad {
	clone := a
	if a.Videos != nil {
		clone.Videos = make([]string, len(a.Videos))
		copy(clone.Videos, a.Videos)
	}
	return clone
}

// HasVideoCapacity reports whether n more videos fit under the cap.
func (a Ad) HasVideoCapacity(n int) bool {
	return len(a.Videos)+n <= MaxVideosPerAd
}
