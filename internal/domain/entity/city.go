package entity

import "time"

// City is admin-managed reference data; classifieds with selected_cities
// visibility link to cities for scoped listing.
type City struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}
