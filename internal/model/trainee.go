package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Trainee is a training participant identified by a callsign.
// Trainee records are owned by the instructor tooling; the engine only reads them.
type Trainee struct {
	ID        uuid.UUID `json:"id"`
	Callsign  string    `json:"callsign"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CanonicalCallsign normalizes a callsign for lookups and storage.
// Callsigns are case-insensitive and stored upper-case.
func CanonicalCallsign(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IdentifyRequest is the payload for trainee identification.
type IdentifyRequest struct {
	Callsign string `json:"callsign" binding:"required,callsign"`
}
