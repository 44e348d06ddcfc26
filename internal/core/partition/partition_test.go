package partition

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFor_Stable(t *testing.T) {
	id := "7f1c8a52-5d7e-4c1e-9a51-3f1f0d7f6c11"
	want := For(id)
	for i := 0; i < 100; i++ {
		assert.Equal(t, want, For(id))
	}
}

func TestFor_Range(t *testing.T) {
	for _, s := range []string{"", "a", uuid.NewString(), "00000000-0000-0000-0000-000000000000"} {
		p := For(s)
		assert.GreaterOrEqual(t, p, 0, s)
		assert.Less(t, p, Count, s)
	}
}

func TestFor_SpreadsSeriesIDs(t *testing.T) {
	// 1000 random ids over 256 partitions should land on ~248 distinct ones.
	seen := make(map[int]struct{})
	for i := 0; i < 1000; i++ {
		seen[For(uuid.NewString())] = struct{}{}
	}
	assert.GreaterOrEqual(t, len(seen), 100)
}

func TestOwner(t *testing.T) {
	id := uuid.NewString()

	assert.Equal(t, 0, Owner(id, 0))
	assert.Equal(t, 0, Owner(id, 1))
	for _, n := range []int{2, 3, 4, 7} {
		got := Owner(id, n)
		assert.Equal(t, For(id)%n, got)
		assert.Equal(t, got, Owner(id, n))
	}
}
