package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "test:"), mr
}

func TestSetGetWithPrefixAndTTL(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Name: "a", Count: 2}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:k") {
		t.Fatal("expected key stored under the prefix")
	}
	if ttl := mr.TTL("test:k"); ttl != time.Minute {
		t.Errorf("TTL = %s, want 1m", ttl)
	}

	var got payload
	if err := c.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Errorf("Get = %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if err := c.Get(ctx, "k", &got); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after expiry = %v, want ErrMiss", err)
	}
}

func TestGetMissingKey(t *testing.T) {
	c, _ := newTestClient(t)
	var got payload
	if err := c.Get(context.Background(), "nope", &got); !errors.Is(err, ErrMiss) {
		t.Errorf("Get = %v, want ErrMiss", err)
	}
}

func TestTakeIsSingleUse(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()
	if err := c.Set(ctx, "once", payload{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got payload
	if err := c.Take(ctx, "once", &got); err != nil {
		t.Fatalf("Take: %v", err)
	}
	if got.Name != "x" {
		t.Errorf("Take = %+v", got)
	}
	if mr.Exists("test:once") {
		t.Error("Take left the key behind")
	}
	if err := c.Take(ctx, "once", &got); !errors.Is(err, ErrMiss) {
		t.Errorf("second Take = %v, want ErrMiss", err)
	}
}

func TestTakeConcurrentOnlyOneWins(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	if err := c.Set(ctx, "race", payload{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, misses := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var got payload
			err := c.Take(ctx, "race", &got)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrMiss):
				misses++
			default:
				t.Errorf("Take: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || misses != 9 {
		t.Errorf("wins = %d, misses = %d, want 1 and 9", wins, misses)
	}
}

func TestDelete(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()
	if err := c.Set(ctx, "gone", payload{}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mr.Exists("test:gone") {
		t.Error("Delete left the key behind")
	}
	// deleting a missing key is not an error
	if err := c.Delete(ctx, "gone"); err != nil {
		t.Errorf("Delete missing = %v", err)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open(context.Background(), "", "", 0); err == nil {
		t.Error("Open with empty addr should fail")
	}

	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := c.Set(context.Background(), "k", payload{}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("pancy:k") {
		t.Error("Open should store keys under the pancy: prefix")
	}
}
