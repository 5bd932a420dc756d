package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/metrics"
)

type Handler interface {
	Handle(ctx context.Context, event *entity.OutboxEvent) error
}

type HandlerFunc func(ctx context.Context, event *entity.OutboxEvent) error

func (f HandlerFunc) Handle(ctx context.Context, event *entity.OutboxEvent) error {
	return f(ctx, event)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent помечает ошибку как неисправимую: событие сразу уходит в dead.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	RetryBase    time.Duration
	// Lease: на сколько событие скрывается от других диспетчеров после захвата.
	Lease time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 5 * time.Second
	}
	if c.Lease <= 0 {
		c.Lease = time.Minute
	}
	return c
}

type Dispatcher struct {
	repo     repository.OutboxRepository
	handlers map[entity.OutboxKind]Handler
	cfg      Config
	metrics  *metrics.Collector
	now      func() time.Time
}

func NewDispatcher(repo repository.OutboxRepository, cfg Config, m *metrics.Collector) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		handlers: make(map[entity.OutboxKind]Handler),
		cfg:      cfg.withDefaults(),
		metrics:  m,
		now:      time.Now,
	}
}

func (d *Dispatcher) Register(kind entity.OutboxKind, h Handler) {
	d.handlers[kind] = h
}

// Run опрашивает очередь до отмены ctx.
func (d *Dispatcher) Run(ctx context.Context) error {
	logger.Log.WithFields(map[string]interface{}{
		"poll_interval": d.cfg.PollInterval.String(),
		"batch_size":    d.cfg.BatchSize,
		"max_attempts":  d.cfg.MaxAttempts,
	}).Info("outbox: диспетчер запущен")

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		for {
			n, err := d.DispatchOnce(ctx)
			if err != nil {
				logger.Log.WithError(err).Warn("outbox: не удалось обработать пачку событий")
				break
			}
			// полная пачка, возможно, есть ещё
			if n < d.cfg.BatchSize || ctx.Err() != nil {
				break
			}
		}

		select {
		case <-ctx.Done():
			logger.Log.Info("outbox: диспетчер остановлен")
			return nil
		case <-ticker.C:
		}
	}
}

// DispatchOnce захватывает одну пачку и обрабатывает её. Возвращает размер пачки.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	events, err := d.repo.ClaimBatch(ctx, d.now(), d.cfg.BatchSize, d.cfg.Lease)
	if err != nil {
		return 0, err
	}
	for _, event := range events {
		d.process(ctx, event)
	}
	return len(events), nil
}

func (d *Dispatcher) process(ctx context.Context, event *entity.OutboxEvent) {
	log := logger.Log.WithFields(map[string]interface{}{
		"event_id": event.ID.String(),
		"kind":     string(event.Kind),
		"attempt":  event.Attempts + 1,
	})

	started := d.now()
	err := d.handle(ctx, event)
	now := d.now()

	switch {
	case err == nil:
		event.MarkDelivered(now)
		d.metrics.RecordDelivered(string(event.Kind), now.Sub(started).Seconds())
	case isPermanent(err):
		event.MarkFailed(err, now, d.cfg.RetryBase, event.Attempts+1)
	default:
		event.MarkFailed(err, now, d.cfg.RetryBase, d.cfg.MaxAttempts)
	}

	if err != nil {
		d.metrics.RecordFailed(string(event.Kind))
		if event.Status == entity.OutboxDead {
			d.metrics.RecordDead(string(event.Kind))
			log.WithError(err).Error("outbox: событие исчерпало попытки доставки")
		} else {
			log.WithError(err).WithField("next_attempt_at", event.NextAttemptAt).Warn("outbox: доставка не удалась, повтор позже")
		}
	}

	if saveErr := d.repo.Save(ctx, event); saveErr != nil {
		log.WithError(saveErr).Error("outbox: не удалось сохранить состояние события")
	}
}

func (d *Dispatcher) handle(ctx context.Context, event *entity.OutboxEvent) (err error) {
	h, ok := d.handlers[event.Kind]
	if !ok {
		return Permanent(fmt.Errorf("нет обработчика для события %q", event.Kind))
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic в обработчике: %v", r)
		}
	}()
	return h.Handle(ctx, event)
}
