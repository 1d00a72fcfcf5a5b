package model

import "time"

// LocalSession is the client-held login state. It never leaves the device.
type LocalSession struct {
	Code          string    `json:"code,omitempty"`
	SessionMarker string    `json:"sessionMarker,omitempty"`
	ExpiryDate    time.Time `json:"expiryDate"`
	OwnerName     string    `json:"ownerName,omitempty"`
	Role          Role      `json:"role"`
	AdminToken    string    `json:"adminToken,omitempty"`
}

// Expired reports whether the session is past its expiry at now
func (s *LocalSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiryDate)
}

// IsAdmin reports whether the session carries the administrator role
func (s *LocalSession) IsAdmin() bool {
	return s.Role == RoleAdministrator
}
