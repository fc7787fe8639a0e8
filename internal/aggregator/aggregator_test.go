package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Compass/internal/cache"
	"github.com/MikeSquared-Agency/Compass/internal/exchange"
	"github.com/MikeSquared-Agency/Compass/internal/news"
	"github.com/MikeSquared-Agency/Compass/internal/openmeteo"
	"github.com/MikeSquared-Agency/Compass/internal/restcountries"
	"github.com/MikeSquared-Agency/Compass/internal/wikipedia"
	"github.com/MikeSquared-Agency/Compass/internal/worldbank"
)

func fp(v float64) *float64 { return &v }

type fakeCountries struct {
	lookups  atomic.Int32
	lists    atomic.Int32
	profiles map[string]*restcountries.Profile
}

func (f *fakeCountries) Lookup(_ context.Context, name string) (*restcountries.Profile, error) {
	f.lookups.Add(1)
	p, ok := f.profiles[strings.ToLower(name)]
	if !ok {
		return nil, restcountries.ErrNotFound
	}
	return p, nil
}

func (f *fakeCountries) ListAll(context.Context) ([]restcountries.CompactCountry, error) {
	f.lists.Add(1)
	return []restcountries.CompactCountry{{Name: "France", CCA2: "FR", CCA3: "FRA"}}, nil
}

type fakeMeteo struct {
	weatherErr error
}

func (m *fakeMeteo) Weather(context.Context, float64, float64) (*openmeteo.Weather, error) {
	if m.weatherErr != nil {
		return nil, m.weatherErr
	}
	return &openmeteo.Weather{Temperature: fp(18), Humidity: fp(55), WindSpeed: fp(12), TemperatureRange: fp(8)}, nil
}

func (m *fakeMeteo) AirQuality(context.Context, float64, float64) (*openmeteo.AirQuality, error) {
	return &openmeteo.AirQuality{USAQI: fp(35), PM25: fp(8), Category: "Good", Color: "#00e400"}, nil
}

type fakeWorldBank struct{}

func (fakeWorldBank) Health(_ context.Context, cca3 string) (*worldbank.Health, error) {
	return &worldbank.Health{LifeExpectancy: fp(82.5)}, nil
}

type fakeWiki struct{}

func (fakeWiki) Summary(_ context.Context, title string) (*wikipedia.Summary, error) {
	return &wikipedia.Summary{Extract: title + " is a country.", URL: "https://en.wikipedia.org/wiki/" + title}, nil
}

type fakeNews struct {
	err error
}

func (n fakeNews) Headlines(_ context.Context, country string) ([]news.Headline, error) {
	if n.err != nil {
		return nil, n.err
	}
	return []news.Headline{{Title: country + " today", Source: "Google News"}}, nil
}

type fakeExchange struct {
	calls atomic.Int32
	err   error
}

func (e *fakeExchange) Latest(context.Context) (*exchange.Rates, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return &exchange.Rates{Base: "USD", Rates: map[string]float64{"EUR": 0.92}}, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[string][]string
}

func (r *recordingNotifier) PartialFailure(_ context.Context, country string, errs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string][]string)
	}
	r.calls[country] = errs
}

func newFixture(t *testing.T) (*Aggregator, *fakeCountries, *fakeMeteo, *fakeExchange, *recordingNotifier) {
	t.Helper()
	countries := &fakeCountries{profiles: map[string]*restcountries.Profile{
		"france": {Name: "France", CCA3: "FRA", Region: "Europe", Subregion: "Western Europe", Population: 68_000_000, LatLng: [2]float64{48.87, 2.33}},
		"japan":  {Name: "Japan", CCA3: "JPN", Region: "Asia", Subregion: "Eastern Asia", Population: 125_000_000, LatLng: [2]float64{35.68, 139.75}},
	}}
	meteo := &fakeMeteo{}
	ex := &fakeExchange{}
	notifier := &recordingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a := New(Clients{
		Countries: countries,
		OpenMeteo: meteo,
		WorldBank: fakeWorldBank{},
		Wikipedia: fakeWiki{},
		News:      fakeNews{},
		Exchange:  ex,
	}, cache.New(cache.NewMemoryBackend(), time.Hour, logger), logger, Options{Concurrency: 2, Notifier: notifier})
	return a, countries, meteo, ex, notifier
}

func TestFetchCompleteData(t *testing.T) {
	a, _, _, _, notifier := newFixture(t)

	res, err := a.Fetch(context.Background(), []string{"Japan", "France"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Empty(t, res.Failed)

	japan := res.Entries[0]
	assert.Equal(t, "Japan", japan.Profile.Name)
	assert.Empty(t, japan.Errors)
	require.NotNil(t, japan.Weather)
	require.NotNil(t, japan.AirQuality)
	require.NotNil(t, japan.Health)
	assert.Equal(t, 82.5, *japan.Health.LifeExpectancy)
	assert.Equal(t, "Japan is a country.", japan.Summary.Extract)
	assert.Len(t, japan.Headlines, 1)
	assert.Equal(t, map[string]string{
		SourceCountry: "miss", SourceWeather: "miss", SourceAQI: "miss",
		SourceHealth: "miss", SourceWiki: "miss", SourceNews: "miss",
	}, japan.CacheStatus)

	require.NotNil(t, res.ExchangeRates)
	assert.Equal(t, 0.92, res.ExchangeRates.Rates["EUR"])
	assert.Empty(t, notifier.calls)
}

func TestFetchSecondCallIsCached(t *testing.T) {
	a, countries, _, ex, _ := newFixture(t)
	ctx := context.Background()

	_, err := a.Fetch(ctx, []string{"France"})
	require.NoError(t, err)
	res, err := a.Fetch(ctx, []string{"france"})
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	for source, status := range res.Entries[0].CacheStatus {
		assert.Equal(t, "hit", status, source)
	}
	assert.Equal(t, int32(1), countries.lookups.Load())
	assert.Equal(t, int32(1), ex.calls.Load())
}

func TestFetchUnknownCountryIsFailed(t *testing.T) {
	a, _, _, _, _ := newFixture(t)

	res, err := a.Fetch(context.Background(), []string{"Atlantis", "France"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "France", res.Entries[0].Profile.Name)
	assert.Equal(t, []FailedCountry{{Name: "Atlantis", Reason: "country not found"}}, res.Failed)
}

func TestFetchPartialFailure(t *testing.T) {
	a, _, meteo, _, notifier := newFixture(t)
	meteo.weatherErr = errors.New("timeout")
	a.clients.News = fakeNews{err: errors.New("feed unavailable")}

	res, err := a.Fetch(context.Background(), []string{"France"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)

	fr := res.Entries[0]
	assert.Nil(t, fr.Weather)
	assert.NotNil(t, fr.AirQuality)
	assert.Nil(t, fr.Headlines)
	assert.ElementsMatch(t, []string{"Open-Meteo Weather: timeout", "Google News: feed unavailable"}, fr.Errors)
	assert.NotContains(t, fr.CacheStatus, SourceWeather)
	assert.NotContains(t, fr.CacheStatus, SourceNews)
	assert.ElementsMatch(t, fr.Errors, notifier.calls["France"])
}

func TestFetchWithoutExchangeRates(t *testing.T) {
	a, _, _, ex, _ := newFixture(t)
	ex.err = errors.New("rates down")

	res, err := a.Fetch(context.Background(), []string{"France"})
	require.NoError(t, err)
	assert.Nil(t, res.ExchangeRates)
	assert.Len(t, res.Entries, 1)
}

func TestFetchCanceled(t *testing.T) {
	a, _, _, _, _ := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Fetch(ctx, []string{"France"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCountriesCached(t *testing.T) {
	a, _, _, _, _ := newFixture(t)
	ctx := context.Background()

	list, status, err := a.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, cache.Miss, status)
	assert.Equal(t, "FRA", list[0].CCA3)

	_, status, err = a.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, cache.Hit, status)
	assert.Equal(t, 1, a.CacheStats(ctx).Entries)
}

func TestRefreshBypassesCache(t *testing.T) {
	a, countries, _, ex, _ := newFixture(t)
	ctx := context.Background()

	_, _, err := a.Countries(ctx)
	require.NoError(t, err)
	_, _, err = a.ExchangeRates(ctx)
	require.NoError(t, err)

	list, err := a.RefreshCountries(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	rates, err := a.RefreshExchangeRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.92, rates.Rates["EUR"])

	assert.Equal(t, int32(2), countries.lists.Load())
	assert.Equal(t, int32(2), ex.calls.Load())

	_, status, err := a.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, cache.Hit, status)
	assert.Equal(t, int32(2), countries.lists.Load())
}
