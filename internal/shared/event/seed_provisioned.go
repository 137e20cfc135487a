package event

import "time"

// SeedProvisionedDestination is the subject every replica listens on to
// learn that a new seed was stored.
const SeedProvisionedDestination string = "seed.provisioned"

// SeedProvisionedMessage never carries the seed, only a keyed fingerprint of it.
type SeedProvisionedMessage struct {
	EventID       string    `json:"event_id"`
	Fingerprint   string    `json:"fingerprint"`
	ProvisionedAt time.Time `json:"provisioned_at"`
}
