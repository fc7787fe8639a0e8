package exchange

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/Compass/internal/upstream"
)

const DefaultBaseURL = "https://open.er-api.com/v6"

// Rates are USD-based exchange rates.
type Rates struct {
	Base       string             `json:"base"`
	Rates      map[string]float64 `json:"rates"`
	LastUpdate string             `json:"last_update"`
}

// Convert returns how many units of currency one US dollar buys.
func (r *Rates) Convert(code string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.Rates[code]
	return v, ok
}

type Client interface {
	Latest(ctx context.Context) (*Rates, error)
}

type HTTPClient struct {
	api *upstream.Client
}

func NewHTTPClient(api *upstream.Client) *HTTPClient {
	return &HTTPClient{api: api}
}

func (c *HTTPClient) Latest(ctx context.Context) (*Rates, error) {
	var resp struct {
		Result     string             `json:"result"`
		BaseCode   string             `json:"base_code"`
		Rates      map[string]float64 `json:"rates"`
		LastUpdate string             `json:"time_last_update_utc"`
	}
	if err := c.api.GetJSON(ctx, "/latest/USD", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Result != "" && resp.Result != "success" {
		return nil, fmt.Errorf("exchange rates: result %q", resp.Result)
	}
	return &Rates{Base: resp.BaseCode, Rates: resp.Rates, LastUpdate: resp.LastUpdate}, nil
}
