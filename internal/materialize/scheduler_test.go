package materialize

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_RejectsInvalidSchedule(t *testing.T) {
	_, err := NewScheduler("every tuesday", time.Minute, NewMaterializer(newMemStore(), newMemStore(), JobParameter{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid materialize schedule")
}

func TestNewScheduler_AcceptsDescriptors(t *testing.T) {
	for _, spec := range []string{"@hourly", "@every 15m", "0 3 * * *"} {
		s, err := NewScheduler(spec, 0, NewMaterializer(newMemStore(), newMemStore(), JobParameter{}))
		require.NoError(t, err, spec)
		assert.Equal(t, 10*time.Minute, s.runTimeout)
	}
}

func TestScheduler_RunsFinalMaterializationOnShutdown(t *testing.T) {
	store := newMemStore(runClub())
	m := NewMaterializer(store, store, JobParameter{Horizon: 14 * 24 * time.Hour})

	s, err := NewScheduler("@hourly", time.Minute, m)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	assert.NotEmpty(t, store.datesFor(runClub().ID))
}
