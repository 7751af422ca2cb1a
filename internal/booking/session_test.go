package booking

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return Snapshot{Stage: StageBooking, Specialty: &catalog[0], Doctor: &drJohnson}
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	store := NewMemorySessionStore(30 * time.Minute)
	store.now = func() time.Time { return now }

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.Put(ctx, "", sampleSnapshot()), ErrSessionIDRequired)

	require.NoError(t, store.Put(ctx, "s1", sampleSnapshot()))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)

	now = now.Add(31 * time.Minute)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Put(ctx, "s2", sampleSnapshot()))
	require.NoError(t, store.Delete(ctx, "s2"))
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := NewRedisSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 30*time.Minute)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Put(ctx, "s1", sampleSnapshot()))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
	assert.Equal(t, 30*time.Minute, mr.TTL("carebook:booking:session:s1"))

	mr.FastForward(31 * time.Minute)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Put(ctx, "s2", sampleSnapshot()))
	require.NoError(t, store.Delete(ctx, "s2"))
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRestoresWizard(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Minute)

	w := newTestWizard(&recordingCreator{})
	toDetails(t, w)
	require.NoError(t, store.Put(ctx, "s1", w.Snapshot()))

	snap, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	resumed := newTestWizard(&recordingCreator{})
	require.NoError(t, resumed.Restore(snap))

	_, err = resumed.Submit(ctx, validDetails())
	require.NoError(t, err)
	assert.Equal(t, StageConfirmation, resumed.Stage())
}
