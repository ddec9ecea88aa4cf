package store

import "github.com/google/uuid"

// Id prefixes per entity kind.
const (
	PrefixStudent      = "ST-"
	PrefixLog          = "log-"
	PrefixArtwork      = "ART-"
	PrefixAnnouncement = "A-"
	PrefixMessage      = "msg-"
)

// NewID returns prefix followed by a random UUID.
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}
