package state

import "github.com/google/uuid"

// NewSiteID identifies this client process towards the relay.
func NewSiteID() string {
	return "site-" + uuid.NewString()
}

// NewKey returns a fresh process-local element key.
func NewKey() string {
	return uuid.NewString()
}
