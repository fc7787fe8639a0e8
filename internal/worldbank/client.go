package worldbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Compass/internal/upstream"
)

const (
	DefaultBaseURL = "https://api.worldbank.org/v2"

	IndicatorLifeExpectancy        = "SP.DYN.LE00.IN"
	IndicatorHealthcareExpenditure = "SH.XPD.CHEX.GD.ZS"
)

// Health holds measured health indicators. Either value may be nil when the
// World Bank has no recent observation for the country.
type Health struct {
	LifeExpectancy        *float64 `json:"life_expectancy"`
	HealthcareExpenditure *float64 `json:"healthcare_expenditure"`
}

type Client interface {
	Health(ctx context.Context, cca3 string) (*Health, error)
}

type HTTPClient struct {
	api *upstream.Client
}

func NewHTTPClient(api *upstream.Client) *HTTPClient {
	return &HTTPClient{api: api}
}

// Health fetches both indicators concurrently. A single failed indicator
// yields a nil field; an error is returned only when both fail.
func (c *HTTPClient) Health(ctx context.Context, cca3 string) (*Health, error) {
	if cca3 == "" {
		return nil, errors.New("worldbank: empty country code")
	}
	code := strings.ToUpper(cca3)

	var (
		h              Health
		lifeErr, exErr error
		g              errgroup.Group
	)
	g.Go(func() error {
		h.LifeExpectancy, lifeErr = c.indicator(ctx, code, IndicatorLifeExpectancy)
		return nil
	})
	g.Go(func() error {
		h.HealthcareExpenditure, exErr = c.indicator(ctx, code, IndicatorHealthcareExpenditure)
		return nil
	})
	_ = g.Wait()

	if lifeErr != nil && exErr != nil {
		return nil, errors.Join(lifeErr, exErr)
	}
	return &h, nil
}

// indicator returns the most recent non-empty value of one indicator.
func (c *HTTPClient) indicator(ctx context.Context, code, indicator string) (*float64, error) {
	path := fmt.Sprintf("/country/%s/indicator/%s", url.PathEscape(code), indicator)
	q := url.Values{"format": {"json"}, "mrnev": {"1"}}

	// The payload is a two element array: paging metadata, then records.
	var payload []json.RawMessage
	if err := c.api.GetJSON(ctx, path, q, &payload); err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, nil
	}
	var records []struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(payload[1], &records); err != nil {
		return nil, fmt.Errorf("worldbank decode %s: %w", indicator, err)
	}
	for _, r := range records {
		if r.Value != nil {
			return r.Value, nil
		}
	}
	return nil, nil
}
