// Package geo resolves a player's approximate location from their IP.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultEndpoint is an ipapi.co-compatible URL template; %s is the IP.
const DefaultEndpoint = "https://ipapi.co/%s/json/"

// ErrLookupFailed is returned when the service answers but cannot locate the IP.
var ErrLookupFailed = errors.New("geo: lookup failed")

// Location is a player's approximate location.
type Location struct {
	City      string `json:"city"`
	Region    string `json:"region"`
	Country   string `json:"country"`
	Continent string `json:"continent"`
	Language  string `json:"language"`
	Org       string `json:"org"`
	Timezone  string `json:"timezone"`
}

// Lookup resolves an IP to a Location.
type Lookup interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// Config configures a Locator.
type Config struct {
	// Endpoint is a URL template with one %s for the IP.
	Endpoint string
	// Timeout bounds each request, waiting on the limiter included.
	Timeout time.Duration
	// RatePerMinute limits outbound requests; 0 disables limiting.
	RatePerMinute int
}

// Locator is an HTTP JSON geolocation client.
type Locator struct {
	endpoint string
	timeout  time.Duration
	limiter  *rate.Limiter
	client   *http.Client
}

// NewLocator builds a Locator.
//
// Precondition: cfg.Endpoint, when set, must contain exactly one %s.
// Postcondition: Returns a Locator or an error for a malformed endpoint.
func NewLocator(cfg Config, client *http.Client) (*Locator, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if strings.Count(endpoint, "%s") != 1 {
		return nil, fmt.Errorf("geo endpoint %q must contain exactly one %%s", endpoint)
	}
	if client == nil {
		client = http.DefaultClient
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute)
	}
	return &Locator{endpoint: endpoint, timeout: cfg.Timeout, limiter: limiter, client: client}, nil
}

type response struct {
	City          string `json:"city"`
	Region        string `json:"region"`
	CountryName   string `json:"country_name"`
	ContinentCode string `json:"continent_code"`
	Languages     string `json:"languages"`
	Org           string `json:"org"`
	Timezone      string `json:"timezone"`
	Error         bool   `json:"error"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
}

// Locate resolves ip.
//
// Postcondition: Returns ErrLookupFailed (wrapped) when the service reports an
// error, or a transport/decoding error otherwise.
func (l *Locator) Locate(ctx context.Context, ip string) (Location, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return Location{}, fmt.Errorf("geo rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(l.endpoint, url.PathEscape(ip)), nil)
	if err != nil {
		return Location{}, fmt.Errorf("building geo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geo request for %s: %w", ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Location{}, fmt.Errorf("%w: %s: http status %d", ErrLookupFailed, ip, resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("decoding geo response for %s: %w", ip, err)
	}
	if body.Error || body.Status == "fail" {
		return Location{}, fmt.Errorf("%w: %s: %s", ErrLookupFailed, ip, body.Reason)
	}

	lang, _, _ := strings.Cut(body.Languages, ",")
	return Location{
		City:      body.City,
		Region:    body.Region,
		Country:   body.CountryName,
		Continent: body.ContinentCode,
		Language:  lang,
		Org:       body.Org,
		Timezone:  body.Timezone,
	}, nil
}
