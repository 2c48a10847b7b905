package models

import (
	"strings"
	"time"
)

// UserProfile is the signed-in identity handed over by the external identity provider.
type UserProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	SignedInAt  time.Time `json:"signedInAt"`
}

// Valid returns true if the profile carries an identifier.
func (u UserProfile) Valid() bool {
	return strings.TrimSpace(u.ID) != ""
}
