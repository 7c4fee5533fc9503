package giveaway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
)

const (
	maxConcurrentEnds = 5
	endTimeout        = 30 * time.Second
)

// Announcer publishes the outcome of an ended giveaway
type Announcer interface {
	AnnounceEnd(ctx context.Context, result *EndResult) error
}

// AnnouncerFunc adapts a function to Announcer
type AnnouncerFunc func(ctx context.Context, result *EndResult) error

// AnnounceEnd implements Announcer
func (f AnnouncerFunc) AnnounceEnd(ctx context.Context, result *EndResult) error {
	return f(ctx, result)
}

// ExpiryWorker periodically ends giveaways whose end time has passed
type ExpiryWorker struct {
	ctx        context.Context
	cancel     context.CancelFunc
	service    *Service
	repo       Repository
	announcer  Announcer
	interval   time.Duration
	processing sync.Map
	semaphore  chan struct{}
	wg         sync.WaitGroup
	startOnce  sync.Once
}

// NewExpiryWorker creates a worker checking every interval
func NewExpiryWorker(service *Service, announcer Announcer, interval time.Duration) *ExpiryWorker {
	ctx, cancel := context.WithCancel(context.Background())
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ExpiryWorker{
		ctx:       ctx,
		cancel:    cancel,
		service:   service,
		repo:      service.repo,
		announcer: announcer,
		interval:  interval,
		semaphore: make(chan struct{}, maxConcurrentEnds),
	}
}

// Start launches the ticker loop. Extra calls are ignored.
func (w *ExpiryWorker) Start() {
	w.startOnce.Do(func() {
		logger.System(fmt.Sprintf("Worker de sorteos iniciado (intervalo: %s)", w.interval), "Giveaway")
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()

			w.Tick()
			for {
				select {
				case <-ticker.C:
					w.Tick()
				case <-w.ctx.Done():
					return
				}
			}
		}()
	})
}

// Stop cancels the loop and waits for in-flight giveaways
func (w *ExpiryWorker) Stop() {
	w.cancel()
	w.wg.Wait()
	logger.System("Worker de sorteos detenido", "Giveaway")
}

// Tick ends every expired giveaway once and finishes draws left open by an
// interrupted end
func (w *ExpiryWorker) Tick() {
	now := w.service.now()
	expired, err := w.repo.ListExpiredGiveaways(w.ctx, now)
	if err != nil {
		logger.Error(fmt.Sprintf("Error obteniendo sorteos expirados: %v", err), "Giveaway")
		return
	}
	pending, err := w.repo.ListPendingDraws(w.ctx, now.Add(-drawLease))
	if err != nil {
		logger.Error(fmt.Sprintf("Error obteniendo sorteos interrumpidos: %v", err), "Giveaway")
	}
	expired = append(expired, pending...)

	for _, g := range expired {
		if _, busy := w.processing.LoadOrStore(g.ID, true); busy {
			continue
		}

		w.wg.Add(1)
		go func(id int64) {
			defer w.wg.Done()
			defer w.processing.Delete(id)
			defer apperrors.RecoverMiddleware()()

			select {
			case w.semaphore <- struct{}{}:
				defer func() { <-w.semaphore }()
			case <-w.ctx.Done():
				return
			}

			w.end(id)
		}(g.ID)
	}
}

func (w *ExpiryWorker) end(id int64) {
	ctx, cancel := context.WithTimeout(w.ctx, endTimeout)
	defer cancel()

	result, err := w.service.End(ctx, id)
	if errors.Is(err, ErrGiveawayEnded) {
		return
	}
	if err != nil {
		apperrors.Capture(fmt.Errorf("ending giveaway %d: %w", id, err), "giveaway.worker")
		return
	}

	logger.Info(fmt.Sprintf("Sorteo #%d finalizado con %d ganador(es)", id, len(result.Winners)), "Giveaway")

	if w.announcer == nil {
		return
	}
	if err := w.announcer.AnnounceEnd(ctx, result); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo anunciar el sorteo #%d: %v", id, err), "Giveaway")
	}
}

// Wait blocks until in-flight ends finish
func (w *ExpiryWorker) Wait() {
	for {
		busy := false
		w.processing.Range(func(_, _ interface{}) bool {
			busy = true
			return false
		})
		if !busy {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}
