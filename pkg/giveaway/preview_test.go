package giveaway

import (
	"context"
	"testing"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPreviewStoreTakeConsumes(t *testing.T) {
	store := NewMemoryPreviewStore(time.Minute)
	token, err := store.Save(context.Background(), &Preview{HostID: "host", Giveaway: models.Giveaway{Prize: "Nitro"}})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	p, err := store.Take(context.Background(), token, "host")
	require.NoError(t, err)
	assert.Equal(t, "Nitro", p.Giveaway.Prize)

	_, err = store.Take(context.Background(), token, "host")
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func TestMemoryPreviewStoreHostCheck(t *testing.T) {
	store := NewMemoryPreviewStore(time.Minute)
	token, _ := store.Save(context.Background(), &Preview{HostID: "host"})

	_, err := store.Take(context.Background(), token, "intruder")
	assert.ErrorIs(t, err, ErrPreviewForbidden)
	assert.ErrorIs(t, store.Discard(context.Background(), token, "intruder"), ErrPreviewForbidden)

	// still there for the host
	require.NoError(t, store.Discard(context.Background(), token, "host"))
	_, err = store.Take(context.Background(), token, "host")
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func TestMemoryPreviewStoreExpires(t *testing.T) {
	store := NewMemoryPreviewStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	token, _ := store.Save(context.Background(), &Preview{HostID: "host"})
	now = now.Add(2 * time.Minute)

	_, err := store.Take(context.Background(), token, "host")
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func TestConcurrentHostsKeepSeparatePreviews(t *testing.T) {
	store := NewMemoryPreviewStore(time.Minute)
	a, _ := store.Save(context.Background(), &Preview{HostID: "a", Giveaway: models.Giveaway{Prize: "A"}})
	b, _ := store.Save(context.Background(), &Preview{HostID: "b", Giveaway: models.Giveaway{Prize: "B"}})
	assert.NotEqual(t, a, b)

	pb, err := store.Take(context.Background(), b, "b")
	require.NoError(t, err)
	assert.Equal(t, "B", pb.Giveaway.Prize)

	pa, err := store.Take(context.Background(), a, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", pa.Giveaway.Prize)
}
