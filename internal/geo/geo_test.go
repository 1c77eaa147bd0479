package geo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCountryForIP_ResolvesKnownCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/84.208.1.1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ip":"84.208.1.1","country":"NO"}`))
	}))
	defer server.Close()

	resolver := newResolver(discardLogger(), server.URL, server.Client())
	country := resolver.CountryForIP(context.Background(), "84.208.1.1")

	assert.Equal(t, "Norway", country)
}

func TestCountryForIP_FallsBackToCodeForUnknownEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"country":"XX"}`))
	}))
	defer server.Close()

	resolver := newResolver(discardLogger(), server.URL, server.Client())

	assert.Equal(t, "XX", resolver.CountryForIP(context.Background(), "1.2.3.4"))
}

func TestCountryForIP_DegradesToEmptyOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not-json`))
			},
		},
		{
			name: "missing country field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"ip":"1.2.3.4"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			resolver := newResolver(discardLogger(), server.URL, server.Client())
			assert.Equal(t, "", resolver.CountryForIP(context.Background(), "1.2.3.4"))
		})
	}
}

func TestCountryForIP_UnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // force connection failures

	resolver := newResolver(discardLogger(), server.URL, http.DefaultClient)
	assert.Equal(t, "", resolver.CountryForIP(context.Background(), "1.2.3.4"))
}
