package roundid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id := New()

	assert.Len(t, id, Length)
	assert.LessOrEqual(t, id[0], byte('7'))
	for _, char := range id {
		assert.Contains(t, alphabet, string(char))
	}
}

func TestNewUniqueAndSorted(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for range 200 {
		id := New()
		require.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
		if prev != "" {
			assert.Less(t, prev, id)
		}
		prev = id
	}
}

func TestEncodeKnownValues(t *testing.T) {
	assert.Equal(t, strings.Repeat("0", Length), Encode(uuid.Nil))
	assert.Equal(t, strings.Repeat("z", Length-1)+"w", Encode(uuid.Max))
}
