package entity

import "time"

// Classified visibility and status values.
const (
	VisibilityAllCities      = "all_cities"
	VisibilitySelectedCities = "selected_cities"

	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Classified is a user-owned ad. SelectedCities is populated only for
// selected_cities visibility; Images are ordered by sort order.
type Classified struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ContactEmail *string   `json:"contact_email"`
	ContactPhone *string   `json:"contact_phone"`
	Visibility   string    `json:"visibility"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`

	SelectedCities []City            `json:"selected_cities"`
	Images         []ClassifiedImage `json:"images"`
}

// ClassifiedImage is one stored upload. URL is either an external public URL
// or a path under /api/uploads, decided by the storage backend. FilePath is
// the stored object key used for deletion and never leaves the API.
type ClassifiedImage struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	FilePath  string `json:"-"`
	SortOrder int    `json:"-"`
}

// ValidVisibility reports whether v is a known visibility value.
func ValidVisibility(v string) bool {
	return v == VisibilityAllCities || v == VisibilitySelectedCities
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished
}
