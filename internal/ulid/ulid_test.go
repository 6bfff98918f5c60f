package ulid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"maelstrom-node/internal/ulid"
)

func TestEncodeLength(t *testing.T) {
	id := ulid.Encode(time.UnixMilli(0), [10]byte{})
	assert.Len(t, id, 26)
}

func TestEncodeIsMonotonicWithTimestamp(t *testing.T) {
	entropy := [10]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	earlier := ulid.Encode(time.UnixMilli(1000), entropy)
	later := ulid.Encode(time.UnixMilli(2000), entropy)
	assert.Less(t, earlier, later)
}

func TestEncodeUsesCrockfordAlphabet(t *testing.T) {
	id := ulid.Encode(time.Now(), [10]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	for _, r := range id {
		assert.Contains(t, "0123456789ABCDEFGHJKMNPQRSTVWXYZ", string(r))
	}
}

func TestNewProducesDistinctIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := ulid.New()
		assert.False(t, seen[id], "duplicate id generated: %s", id)
		seen[id] = true
	}
}
