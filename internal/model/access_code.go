package model

import "time"

// AccessCode is a subscriber PIN granting time-boxed catalog access
type AccessCode struct {
	ID              string     `json:"id" bson:"_id,omitempty"`
	Code            string     `json:"pin_code" bson:"code"`
	OwnerName       string     `json:"client_name" bson:"ownerName"`
	CreatedAt       time.Time  `json:"created_at" bson:"createdAt"`
	DaysValid       int        `json:"days_valid" bson:"daysValid"`
	ExpiryDate      time.Time  `json:"expiry_date" bson:"expiryDate"`
	IsActive        bool       `json:"is_active" bson:"isActive"`
	SessionMarker   string     `json:"session_id,omitempty" bson:"sessionMarker,omitempty"`
	SessionIssuedAt *time.Time `json:"session_issued_at,omitempty" bson:"sessionIssuedAt,omitempty"`
	SessionVersion  int64      `json:"-" bson:"sessionVersion,omitempty"`
	CreatedBy       string     `json:"created_by,omitempty" bson:"createdBy,omitempty"`
}

// IsExpired reports whether now is past the expiry date
func (c *AccessCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiryDate)
}

// Usable reports whether the code may open a new session at now
func (c *AccessCode) Usable(now time.Time) bool {
	return c.IsActive && !c.IsExpired(now)
}

// ExpiryFrom returns the expiry date for a code created at t and valid for days
func ExpiryFrom(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// SessionGrant is returned to a client after a successful code validation
type SessionGrant struct {
	ID         string    `json:"id"`
	OwnerName  string    `json:"client_name"`
	ExpiryDate time.Time `json:"expiry_date"`
	Marker     string    `json:"session_id"`
}

// MarkerState is the cached view of a code used by liveness checks.
// Version follows the code's SessionVersion; a cache never replaces an
// entry with one of a lower version.
type MarkerState struct {
	CodeID     string    `json:"codeId"`
	Marker     string    `json:"marker"`
	IsActive   bool      `json:"isActive"`
	ExpiryDate time.Time `json:"expiryDate"`
	Version    int64     `json:"version"`
}

// StateOf projects the fields a liveness check needs
func StateOf(c *AccessCode) *MarkerState {
	return &MarkerState{
		CodeID:     c.ID,
		Marker:     c.SessionMarker,
		IsActive:   c.IsActive,
		ExpiryDate: c.ExpiryDate,
		Version:    c.SessionVersion,
	}
}

// CreateCodeRequest is the admin request body for creating a PIN
type CreateCodeRequest struct {
	Code      string `json:"pin_code,omitempty"`
	OwnerName string `json:"client_name"`
	DaysValid int    `json:"days_valid"`
	Custom    bool   `json:"custom_pin,omitempty"`
}

// CreateCodeResponse is returned after a PIN is created
type CreateCodeResponse struct {
	Success    bool      `json:"success"`
	Code       string    `json:"pin_code"`
	ID         string    `json:"pin_id"`
	ExpiryDate time.Time `json:"expiry_date"`
}
