package scheduler

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator hands out session ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}

// SequenceGenerator produces "<prefix>-1", "<prefix>-2", ... and is useful
// wherever plans must be reproducible.
type SequenceGenerator struct {
	Prefix string
	n      int
}

func (g *SequenceGenerator) NewID() string {
	g.n++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "s"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n)
}
