package restcountries

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/Compass/internal/upstream"
)

const DefaultBaseURL = "https://restcountries.com/v3.1"

var ErrNotFound = errors.New("country not found")

type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Profile is the static description of a country used for display and health lookups.
type Profile struct {
	Name         string     `json:"name"`
	OfficialName string     `json:"official_name"`
	Capital      string     `json:"capital"`
	Population   int64      `json:"population"`
	Area         float64    `json:"area"`
	Region       string     `json:"region"`
	Subregion    string     `json:"subregion"`
	Currencies   []Currency `json:"currencies"`
	Languages    []string   `json:"languages"`
	LatLng       [2]float64 `json:"latlng"`
	Flag         string     `json:"flag"`
	FlagEmoji    string     `json:"flag_emoji"`
	Gini         *float64   `json:"gini,omitempty"`
	Timezones    []string   `json:"timezones"`
	CCA2         string     `json:"cca2"`
	CCA3         string     `json:"cca3"`
}

type CompactCountry struct {
	Name string `json:"name"`
	CCA2 string `json:"cca2"`
	CCA3 string `json:"cca3"`
	Flag string `json:"flag"`
}

type Client interface {
	Lookup(ctx context.Context, name string) (*Profile, error)
	ListAll(ctx context.Context) ([]CompactCountry, error)
}

type HTTPClient struct {
	api *upstream.Client
}

func NewHTTPClient(api *upstream.Client) *HTTPClient {
	return &HTTPClient{api: api}
}

type apiCountry struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	Capital    []string `json:"capital"`
	Population int64    `json:"population"`
	Area       float64  `json:"area"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Languages   map[string]string `json:"languages"`
	LatLng      []float64         `json:"latlng"`
	CapitalInfo struct {
		LatLng []float64 `json:"latlng"`
	} `json:"capitalInfo"`
	Flags struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
	Flag      string             `json:"flag"`
	Gini      map[string]float64 `json:"gini"`
	Timezones []string           `json:"timezones"`
	CCA2      string             `json:"cca2"`
	CCA3      string             `json:"cca3"`
}

// Lookup resolves a free-form country name to its best matching profile.
func (c *HTTPClient) Lookup(ctx context.Context, name string) (*Profile, error) {
	var matches []apiCountry
	err := c.api.GetJSON(ctx, "/name/"+url.PathEscape(name), url.Values{"fullText": {"false"}}, &matches)
	if err != nil {
		var se *upstream.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	best := matches[0]
	// Partial name matching ranks minor US territories ahead of the US itself.
	if isUSAlias(name) {
		for _, m := range matches {
			if m.CCA3 == "USA" {
				best = m
				break
			}
		}
	}
	return toProfile(best, name), nil
}

// ListAll returns every country in compact form, sorted by name.
func (c *HTTPClient) ListAll(ctx context.Context) ([]CompactCountry, error) {
	var all []struct {
		Name struct {
			Common string `json:"common"`
		} `json:"name"`
		CCA2 string `json:"cca2"`
		CCA3 string `json:"cca3"`
		Flag string `json:"flag"`
	}
	if err := c.api.GetJSON(ctx, "/all", url.Values{"fields": {"name,cca2,cca3,flag"}}, &all); err != nil {
		return nil, err
	}
	out := make([]CompactCountry, 0, len(all))
	for _, a := range all {
		out = append(out, CompactCountry{Name: a.Name.Common, CCA2: a.CCA2, CCA3: a.CCA3, Flag: a.Flag})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func isUSAlias(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "united states", "usa", "us":
		return true
	}
	return false
}

func toProfile(a apiCountry, requested string) *Profile {
	p := &Profile{
		Name:         a.Name.Common,
		OfficialName: a.Name.Official,
		Capital:      "Unknown",
		Population:   a.Population,
		Area:         a.Area,
		Region:       orUnknown(a.Region),
		Subregion:    orUnknown(a.Subregion),
		Flag:         a.Flags.SVG,
		FlagEmoji:    a.Flag,
		Timezones:    a.Timezones,
		CCA2:         a.CCA2,
		CCA3:         a.CCA3,
	}
	if p.Name == "" {
		p.Name = requested
	}
	if len(a.Capital) > 0 {
		p.Capital = a.Capital[0]
	}
	if p.Flag == "" {
		p.Flag = a.Flags.PNG
	}

	// Capital coordinates are preferred since weather is sampled at the capital.
	switch {
	case len(a.CapitalInfo.LatLng) == 2:
		p.LatLng = [2]float64{a.CapitalInfo.LatLng[0], a.CapitalInfo.LatLng[1]}
	case len(a.LatLng) == 2:
		p.LatLng = [2]float64{a.LatLng[0], a.LatLng[1]}
	}

	codes := make([]string, 0, len(a.Currencies))
	for code := range a.Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		cur := a.Currencies[code]
		p.Currencies = append(p.Currencies, Currency{Code: code, Name: cur.Name, Symbol: cur.Symbol})
	}

	for _, lang := range a.Languages {
		p.Languages = append(p.Languages, lang)
	}
	sort.Strings(p.Languages)

	// gini is keyed by survey year; keep the most recent.
	var latest string
	for year, v := range a.Gini {
		if year > latest {
			latest = year
			g := v
			p.Gini = &g
		}
	}
	return p
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
