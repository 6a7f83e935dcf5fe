package identity

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerator_Next(t *testing.T) {
	g := New()
	pattern := regexp.MustCompile(`^rck_[0-9a-f]{32}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.Next(PrefixRack)
		assert.Regexp(t, pattern, id)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestGenerator_DeterministicSource(t *testing.T) {
	fixed := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	g := NewWithSource(func() uuid.UUID { return fixed })

	assert.Equal(t, "svc_0f8fad5bd9cb469fa16570867728950e", g.Next(PrefixService))
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("net_abc", PrefixNetworkDevice))
	assert.False(t, HasPrefix("network", PrefixNetworkDevice))
	assert.False(t, HasPrefix("srv_demo", PrefixRack))
}
