package model

// UserDetails is the slice of the externally owned user profile the wizard reads.
type UserDetails struct {
	ID         string `json:"id"`
	Email      string `json:"email,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	SignedUpAs string `json:"signedUpAs"`
}
