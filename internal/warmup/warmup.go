// Package warmup keeps the shared upstream responses fresh in the cache so
// analyses rarely wait on the slowest lookups.
package warmup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MikeSquared-Agency/Compass/internal/exchange"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/restcountries"
)

const DefaultSchedule = "@every 30m"

// Source refetches the shared responses and overwrites the cached copies.
type Source interface {
	RefreshCountries(ctx context.Context) ([]restcountries.CompactCountry, error)
	RefreshExchangeRates(ctx context.Context) (*exchange.Rates, error)
}

type Report struct {
	Countries int           `json:"countries"`
	Exchange  bool          `json:"exchange"`
	Errors    []string      `json:"errors,omitempty"`
	Duration  time.Duration `json:"duration"`
}

type Warmer struct {
	src      Source
	hermes   hermes.Client
	logger   *slog.Logger
	schedule string
	timeout  time.Duration
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	started bool
}

// New returns a warmer. h may be nil, in which case no events are published
// and refresh requests are not received.
func New(src Source, h hermes.Client, schedule string, logger *slog.Logger) *Warmer {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Warmer{
		src:      src,
		hermes:   h,
		logger:   logger,
		schedule: schedule,
		timeout:  2 * time.Minute,
		now:      time.Now,
		cron:     cron.New(),
	}
}

// RunOnce refetches the country list and exchange rates into the cache, even
// when fresh copies are stored. Failures are reported, never returned; a
// failed source keeps its previous cached value.
func (w *Warmer) RunOnce(ctx context.Context) Report {
	start := w.now()
	var rep Report

	countries, err := w.src.RefreshCountries(ctx)
	if err != nil {
		rep.Errors = append(rep.Errors, fmt.Sprintf("countries: %v", err))
	} else {
		rep.Countries = len(countries)
	}

	if _, err := w.src.RefreshExchangeRates(ctx); err != nil {
		rep.Errors = append(rep.Errors, fmt.Sprintf("exchange rates: %v", err))
	} else {
		rep.Exchange = true
	}
	rep.Duration = w.now().Sub(start)

	if len(rep.Errors) > 0 {
		w.logger.WarnContext(ctx, "cache warmup incomplete", "category", "CACHE", "errors", rep.Errors)
	} else {
		w.logger.InfoContext(ctx, "cache warmed", "category", "CACHE",
			"countries", rep.Countries,
			"duration_ms", rep.Duration.Milliseconds(),
		)
	}

	if w.hermes != nil {
		err := w.hermes.Publish(hermes.SubjectCacheWarmed, hermes.CacheWarmedEvent{
			Countries:  rep.Countries,
			Exchange:   rep.Exchange,
			Errors:     rep.Errors,
			DurationMs: rep.Duration.Milliseconds(),
			Timestamp:  w.now().UTC(),
		})
		if err != nil {
			w.logger.Warn("publish warmup event failed", "error", err)
		}
	}
	return rep
}

// Start schedules RunOnce on the configured cron schedule and, when hermes
// is available, on every refresh request. It does not run immediately.
func (w *Warmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	id, err := w.cron.AddFunc(w.schedule, func() { w.run(ctx, "schedule") })
	if err != nil {
		return fmt.Errorf("warmup schedule %q: %w", w.schedule, err)
	}
	w.entryID = id

	if w.hermes != nil {
		err := w.hermes.Subscribe(hermes.SubjectCacheRefresh, func(_ string, data []byte) {
			var req hermes.CacheRefreshRequest
			if len(data) > 0 {
				if err := json.Unmarshal(data, &req); err != nil {
					w.logger.Warn("invalid cache refresh request", "error", err)
				}
			}
			reason := req.Reason
			if reason == "" {
				reason = "refresh request"
			}
			go w.run(ctx, reason)
		})
		if err != nil {
			w.cron.Remove(id)
			return fmt.Errorf("subscribe %s: %w", hermes.SubjectCacheRefresh, err)
		}
	}

	w.cron.Start()
	w.started = true
	w.logger.Info("cache warmup scheduled", "schedule", w.schedule)
	return nil
}

// Stop halts the schedule and waits for a running warmup to finish.
func (w *Warmer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	<-w.cron.Stop().Done()
	w.started = false
}

// Next is the time of the next scheduled run, or zero when not started.
func (w *Warmer) Next() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return time.Time{}
	}
	return w.cron.Entry(w.entryID).Next
}

func (w *Warmer) run(parent context.Context, trigger string) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()
	w.logger.Debug("cache warmup triggered", "trigger", trigger)
	w.RunOnce(ctx)
}
