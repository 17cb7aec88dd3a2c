package state

import (
	"strings"

	"github.com/google/uuid"
)

// NewActorID returns a random automerge actor id: a v4 uuid in plain hex.
func NewActorID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
