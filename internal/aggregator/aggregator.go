// Package aggregator gathers everything known about a set of countries from
// the upstream APIs, going through the shared response cache.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Compass/internal/cache"
	"github.com/MikeSquared-Agency/Compass/internal/exchange"
	"github.com/MikeSquared-Agency/Compass/internal/news"
	"github.com/MikeSquared-Agency/Compass/internal/openmeteo"
	"github.com/MikeSquared-Agency/Compass/internal/restcountries"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/wikipedia"
	"github.com/MikeSquared-Agency/Compass/internal/worldbank"
)

const (
	DefaultConcurrency = 8

	keyAllCountries = "all_countries"
	keyExchange     = "exchange_rates"
)

// Source names used in CacheStatus.
const (
	SourceCountry = "country"
	SourceWeather = "weather"
	SourceAQI     = "aqi"
	SourceHealth  = "health"
	SourceWiki    = "wiki"
	SourceNews    = "news"
)

type Clients struct {
	Countries restcountries.Client
	OpenMeteo openmeteo.Client
	WorldBank worldbank.Client
	Wikipedia wikipedia.Client
	News      news.Client
	Exchange  exchange.Client
}

// Notifier is told about countries that were only partly fetched.
type Notifier interface {
	PartialFailure(ctx context.Context, country string, errs []string)
}

type Options struct {
	// Concurrency caps how many countries are fetched at once.
	Concurrency int
	Notifier    Notifier
}

type FailedCountry struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Result struct {
	Entries       []scoring.CountryData
	Failed        []FailedCountry
	ExchangeRates *exchange.Rates
}

type Aggregator struct {
	clients  Clients
	cache    *cache.Cache
	notifier Notifier
	limit    int
	logger   *slog.Logger
}

func New(clients Clients, c *cache.Cache, logger *slog.Logger, opts Options) *Aggregator {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Aggregator{
		clients:  clients,
		cache:    c,
		notifier: opts.Notifier,
		limit:    limit,
		logger:   logger,
	}
}

// Fetch collects data for every name. Countries whose profile cannot be
// resolved are reported in Failed and left out of Entries; input order is
// kept otherwise. Exchange rates are best effort.
func (a *Aggregator) Fetch(ctx context.Context, names []string) (*Result, error) {
	type slot struct {
		data   scoring.CountryData
		failed *FailedCountry
	}
	slots := make([]slot, len(names))

	var rates *exchange.Rates
	var g errgroup.Group
	g.Go(func() error {
		r, _, err := a.ExchangeRates(ctx)
		if err != nil {
			a.logger.WarnContext(ctx, "exchange rates unavailable", "category", "PARTIAL_FAILURE", "error", err)
			return nil
		}
		rates = r
		return nil
	})

	var countries errgroup.Group
	countries.SetLimit(a.limit)
	for i, name := range names {
		countries.Go(func() error {
			data, failed := a.fetchCountry(ctx, name)
			slots[i] = slot{data: data, failed: failed}
			return nil
		})
	}
	_ = countries.Wait()
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregate countries: %w", err)
	}

	res := &Result{ExchangeRates: rates, Entries: make([]scoring.CountryData, 0, len(names))}
	for _, s := range slots {
		if s.failed != nil {
			res.Failed = append(res.Failed, *s.failed)
			continue
		}
		res.Entries = append(res.Entries, s.data)
	}
	return res, nil
}

// Countries returns the compact list of every known country.
func (a *Aggregator) Countries(ctx context.Context) ([]restcountries.CompactCountry, cache.Status, error) {
	return cache.GetOrFetch(ctx, a.cache, keyAllCountries, a.clients.Countries.ListAll)
}

func (a *Aggregator) ExchangeRates(ctx context.Context) (*exchange.Rates, cache.Status, error) {
	return cache.GetOrFetch(ctx, a.cache, keyExchange, a.clients.Exchange.Latest)
}

// RefreshCountries refetches the country list and replaces the cached copy.
func (a *Aggregator) RefreshCountries(ctx context.Context) ([]restcountries.CompactCountry, error) {
	return cache.Refresh(ctx, a.cache, keyAllCountries, a.clients.Countries.ListAll)
}

// RefreshExchangeRates refetches the rates and replaces the cached copy.
func (a *Aggregator) RefreshExchangeRates(ctx context.Context) (*exchange.Rates, error) {
	return cache.Refresh(ctx, a.cache, keyExchange, a.clients.Exchange.Latest)
}

func (a *Aggregator) CacheStats(ctx context.Context) cache.Stats {
	return a.cache.Stats(ctx)
}

// partial collects per-source outcomes from concurrent fetches.
type partial struct {
	mu     sync.Mutex
	status map[string]string
	errs   []string
}

func (p *partial) record(source string, s cache.Status) {
	p.mu.Lock()
	p.status[source] = string(s)
	p.mu.Unlock()
}

func (p *partial) fail(api string, err error) {
	p.mu.Lock()
	p.errs = append(p.errs, fmt.Sprintf("%s: %v", api, err))
	p.mu.Unlock()
}

func (a *Aggregator) fetchCountry(ctx context.Context, name string) (scoring.CountryData, *FailedCountry) {
	key := strings.ToLower(strings.TrimSpace(name))
	profile, status, err := cache.GetOrFetch(ctx, a.cache, "country:"+key, func(ctx context.Context) (*restcountries.Profile, error) {
		return a.clients.Countries.Lookup(ctx, name)
	})
	if err != nil || profile == nil {
		reason := "country not found"
		if err != nil && !errors.Is(err, restcountries.ErrNotFound) {
			reason = fmt.Sprintf("REST Countries: %v", err)
		}
		a.logger.WarnContext(ctx, "country lookup failed", "category", "PARTIAL_FAILURE", "country", name, "reason", reason)
		return scoring.CountryData{}, &FailedCountry{Name: name, Reason: reason}
	}

	p := &partial{status: map[string]string{SourceCountry: string(status)}}
	data := scoring.CountryData{Profile: profile}
	lat, lng := profile.LatLng[0], profile.LatLng[1]
	coordKey := fmt.Sprintf("%.2f,%.2f", lat, lng)

	var g errgroup.Group
	g.Go(func() error {
		wx, s, err := cache.GetOrFetch(ctx, a.cache, "weather:"+coordKey, func(ctx context.Context) (*openmeteo.Weather, error) {
			return a.clients.OpenMeteo.Weather(ctx, lat, lng)
		})
		if err != nil {
			p.fail("Open-Meteo Weather", err)
			return nil
		}
		p.record(SourceWeather, s)
		data.Weather = wx
		return nil
	})
	g.Go(func() error {
		aq, s, err := cache.GetOrFetch(ctx, a.cache, "aqi:"+coordKey, func(ctx context.Context) (*openmeteo.AirQuality, error) {
			return a.clients.OpenMeteo.AirQuality(ctx, lat, lng)
		})
		if err != nil {
			p.fail("Open-Meteo Air Quality", err)
			return nil
		}
		p.record(SourceAQI, s)
		data.AirQuality = aq
		return nil
	})
	if profile.CCA3 != "" {
		g.Go(func() error {
			h, s, err := cache.GetOrFetch(ctx, a.cache, "wb:"+profile.CCA3, func(ctx context.Context) (*worldbank.Health, error) {
				return a.clients.WorldBank.Health(ctx, profile.CCA3)
			})
			if err != nil {
				p.fail("World Bank", err)
				return nil
			}
			p.record(SourceHealth, s)
			data.Health = h
			return nil
		})
	}
	g.Go(func() error {
		sum, s, err := cache.GetOrFetch(ctx, a.cache, "wiki:"+strings.ToLower(profile.Name), func(ctx context.Context) (*wikipedia.Summary, error) {
			return a.clients.Wikipedia.Summary(ctx, profile.Name)
		})
		if err != nil {
			p.fail("Wikipedia", err)
			return nil
		}
		p.record(SourceWiki, s)
		data.Summary = sum
		return nil
	})
	g.Go(func() error {
		hl, s, err := cache.GetOrFetch(ctx, a.cache, "news:"+strings.ToLower(profile.Name), func(ctx context.Context) ([]news.Headline, error) {
			return a.clients.News.Headlines(ctx, profile.Name)
		})
		if err != nil {
			p.fail("Google News", err)
			return nil
		}
		p.record(SourceNews, s)
		data.Headlines = hl
		return nil
	})
	_ = g.Wait()

	data.CacheStatus = p.status
	data.Errors = p.errs

	if len(p.errs) > 0 {
		a.logger.WarnContext(ctx, "partial data for country",
			"category", "PARTIAL_FAILURE",
			"country", profile.Name,
			"errors", p.errs,
		)
		if a.notifier != nil {
			a.notifier.PartialFailure(ctx, profile.Name, p.errs)
		}
	} else {
		a.logger.InfoContext(ctx, "country data complete", "category", "AGGREGATE", "country", profile.Name)
	}
	return data, nil
}
