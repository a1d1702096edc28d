package models

// Tag names are unique and case-sensitive.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
