// Package geo resolves an IP address to a country name via the ipinfo.io
// lookup service plus a local ISO 3166 code-to-name table. Lookup failures
// degrade to an empty country, never an error: the risk engine treats an
// unknown country as a mismatch, which is the fail-closed direction.
package geo

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

//go:embed country_codes.json
var countryCodesJSON []byte

const defaultBaseURL = "https://ipinfo.io"

// Resolver looks up the country for an IP address.
type Resolver struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger

	countryNames map[string]string
}

// NewResolver creates a Resolver with a shared HTTP client and the embedded
// country table.
func NewResolver(logger *slog.Logger) *Resolver {
	return newResolver(logger, defaultBaseURL, &http.Client{Timeout: 5 * time.Second})
}

// newResolver lets tests point the resolver at a local server.
func newResolver(logger *slog.Logger, baseURL string, client *http.Client) *Resolver {
	names := make(map[string]string)
	if err := json.Unmarshal(countryCodesJSON, &names); err != nil {
		// The table is compiled in; a parse failure is a build defect.
		// Degrade to raw country codes rather than refusing to start.
		logger.Error("failed to parse embedded country table", slog.Any("error", err))
	}
	return &Resolver{
		client:       client,
		baseURL:      baseURL,
		logger:       logger,
		countryNames: names,
	}
}

type lookupResponse struct {
	Country string `json:"country"`
}

// CountryForIP returns the full country name for an IP address, the bare
// country code when the code is not in the local table, or "" when the
// lookup fails entirely.
func (r *Resolver) CountryForIP(ctx context.Context, ip string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", r.baseURL, ip), nil)
	if err != nil {
		r.logger.Warn("failed to build geo lookup request", slog.Any("error", err))
		return ""
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("geo lookup failed", slog.Any("error", err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("geo lookup returned non-200", slog.Int("status", resp.StatusCode))
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		r.logger.Warn("failed to read geo lookup response", slog.Any("error", err))
		return ""
	}

	var lookup lookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		r.logger.Warn("failed to decode geo lookup response", slog.Any("error", err))
		return ""
	}
	if lookup.Country == "" {
		return ""
	}

	return r.countryName(lookup.Country)
}

// countryName converts an ISO code to a full name, falling back to the code.
func (r *Resolver) countryName(code string) string {
	if name, ok := r.countryNames[code]; ok {
		return name
	}
	return code
}
