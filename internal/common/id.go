package common

import "github.com/google/uuid"

// IDProvider generates opaque identifiers. Injecting it keeps the scan
// pipeline deterministic under test while production code uses UUIDs.
type IDProvider interface {
	NewID() string
}

// UUIDProvider generates random UUIDv4 identifiers.
type UUIDProvider struct{}

// NewID returns a new random UUID string.
func (UUIDProvider) NewID() string {
	return uuid.NewString()
}
