package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Prefixes tag every id with the kind of entity it names.
const (
	PrefixRack          = "rck"
	PrefixServer        = "srv"
	PrefixService       = "svc"
	PrefixNetworkDevice = "net"
)

// Generator produces prefix-tagged identifiers.
type Generator struct {
	source func() uuid.UUID
}

// New creates a generator backed by random (version 4) UUIDs.
func New() *Generator {
	return &Generator{source: uuid.New}
}

// NewWithSource creates a generator with a custom UUID source, for tests.
func NewWithSource(source func() uuid.UUID) *Generator {
	return &Generator{source: source}
}

// Next returns "<prefix>_<32 hex chars>". The full 128-bit value is kept.
func (g *Generator) Next(prefix string) string {
	u := g.source()
	return prefix + "_" + strings.ReplaceAll(u.String(), "-", "")
}

// HasPrefix reports whether id was generated for the given kind.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}
