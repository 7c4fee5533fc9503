package giveaway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/cache"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/google/uuid"
)

// Preview is a giveaway awaiting confirmation by its host
type Preview struct {
	Token    string          `json:"token"`
	HostID   string          `json:"hostId"`
	GuildID  string          `json:"guildId"`
	Duration time.Duration   `json:"duration"`
	Giveaway models.Giveaway `json:"giveaway"`
}

// PreviewStore keeps previews keyed by a confirmation token until they expire
type PreviewStore interface {
	// Save stores p under a new token and returns it
	Save(ctx context.Context, p *Preview) (string, error)
	// Take returns and consumes the preview. Another host gets ErrPreviewForbidden
	// and the preview stays.
	Take(ctx context.Context, token, hostID string) (*Preview, error)
	// Discard drops the preview with the same host check as Take
	Discard(ctx context.Context, token, hostID string) error
}

// MemoryPreviewStore keeps previews in process memory
type MemoryPreviewStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryPreview
}

type memoryPreview struct {
	preview   Preview
	expiresAt time.Time
}

// NewMemoryPreviewStore creates an in-memory store
func NewMemoryPreviewStore(ttl time.Duration) *MemoryPreviewStore {
	return &MemoryPreviewStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryPreview),
	}
}

// Save implements PreviewStore
func (s *MemoryPreviewStore) Save(ctx context.Context, p *Preview) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, token)
		}
	}

	p.Token = uuid.NewString()
	s.entries[p.Token] = memoryPreview{preview: *p, expiresAt: now.Add(s.ttl)}
	return p.Token, nil
}

// Take implements PreviewStore
func (s *MemoryPreviewStore) Take(ctx context.Context, token, hostID string) (*Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.lookup(token, hostID)
	if err != nil {
		return nil, err
	}
	delete(s.entries, token)
	return p, nil
}

// Discard implements PreviewStore
func (s *MemoryPreviewStore) Discard(ctx context.Context, token, hostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(token, hostID); err != nil {
		return err
	}
	delete(s.entries, token)
	return nil
}

// lookup requires s.mu
func (s *MemoryPreviewStore) lookup(token, hostID string) (*Preview, error) {
	e, ok := s.entries[token]
	if !ok {
		return nil, ErrPreviewNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, token)
		return nil, ErrPreviewNotFound
	}
	if e.preview.HostID != hostID {
		return nil, ErrPreviewForbidden
	}
	p := e.preview
	return &p, nil
}

// RedisPreviewStore keeps previews in Redis so any bot process can confirm them
type RedisPreviewStore struct {
	client *cache.Client
	ttl    time.Duration
}

// NewRedisPreviewStore creates a Redis backed store
func NewRedisPreviewStore(client *cache.Client, ttl time.Duration) *RedisPreviewStore {
	return &RedisPreviewStore{client: client, ttl: ttl}
}

func previewKey(token string) string {
	return "giveaway:preview:" + token
}

// Save implements PreviewStore
func (s *RedisPreviewStore) Save(ctx context.Context, p *Preview) (string, error) {
	p.Token = uuid.NewString()
	if err := s.client.Set(ctx, previewKey(p.Token), p, s.ttl); err != nil {
		return "", err
	}
	return p.Token, nil
}

// Take implements PreviewStore
func (s *RedisPreviewStore) Take(ctx context.Context, token, hostID string) (*Preview, error) {
	if err := s.check(ctx, token, hostID); err != nil {
		return nil, err
	}

	var p Preview
	if err := s.client.Take(ctx, previewKey(token), &p); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrPreviewNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Discard implements PreviewStore
func (s *RedisPreviewStore) Discard(ctx context.Context, token, hostID string) error {
	if err := s.check(ctx, token, hostID); err != nil {
		return err
	}
	return s.client.Delete(ctx, previewKey(token))
}

func (s *RedisPreviewStore) check(ctx context.Context, token, hostID string) error {
	var p Preview
	if err := s.client.Get(ctx, previewKey(token), &p); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return ErrPreviewNotFound
		}
		return err
	}
	if p.HostID != hostID {
		return ErrPreviewForbidden
	}
	return nil
}
