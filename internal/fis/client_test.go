package fis

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/cache"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventJSON = `{
  "id": 51234,
  "place": "Adelboden",
  "placeNationCode": "SUI",
  "startDate": "2026-01-10",
  "endDate": "2026-01-11",
  "competitions": [
    {"codex": 1201, "date": "2026-01-10", "disciplineCode": "GS", "categoryCode": "WC", "genderCode": "M"},
    {"codex": "1202", "date": "2026-01-11", "disciplineCode": "SL", "categoryCode": "WC", "genderCode": "M", "eventDescription": "Night SL"}
  ]
}`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFetchEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/51234", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, eventJSON)
	}))
	defer srv.Close()

	client := NewClient(config.ClientConfig{BaseURL: srv.URL + "/", AuthToken: "tok", Timeout: 2}, quietLogger())
	data, err := client.FetchEvent(context.Background(), 51234)
	require.NoError(t, err)

	assert.Equal(t, "Adelboden", data.Place)
	require.Len(t, data.Competitions, 2)
	assert.Equal(t, "1201", data.Competitions[0].Codex)
	assert.Equal(t, "GS", data.Competitions[0].Discipline)
	assert.Equal(t, "1202", data.Competitions[1].Codex)
	assert.Equal(t, "Night SL", data.Competitions[1].Description)
}

func TestFetchEvent_FailuresAreGeneric(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html>")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				tt.handler(w, r)
			}))
			defer srv.Close()

			client := NewClient(config.ClientConfig{BaseURL: srv.URL}, quietLogger())
			_, err := client.FetchEvent(context.Background(), 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrUpstream)

			var up *apperr.UpstreamError
			require.ErrorAs(t, err, &up)
			assert.Equal(t, "failed to fetch event data", up.Message)
			assert.Equal(t, 1, calls, "no retry")
		})
	}
}

func TestCachedFetcher(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, eventJSON)
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rc, err := cache.NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)

	fetcher := NewCachedFetcher(NewClient(config.ClientConfig{BaseURL: srv.URL}, quietLogger()), rc, time.Minute, quietLogger())
	for i := 0; i < 3; i++ {
		data, err := fetcher.FetchEvent(context.Background(), 51234)
		require.NoError(t, err)
		assert.Equal(t, "Adelboden", data.Place)
	}
	assert.Equal(t, 1, calls)
}

func TestCachedFetcher_RefreshEventBypassesCache(t *testing.T) {
	place := "Adelboden"
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, `{"id": 51234, "place": "`+place+`", "competitions": []}`)
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rc, err := cache.NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	fetcher := NewCachedFetcher(NewClient(config.ClientConfig{BaseURL: srv.URL}, quietLogger()), rc, time.Minute, quietLogger())
	ctx := context.Background()

	data, err := fetcher.FetchEvent(ctx, 51234)
	require.NoError(t, err)
	assert.Equal(t, "Adelboden", data.Place)

	place = "Wengen"
	data, err = fetcher.FetchEvent(ctx, 51234)
	require.NoError(t, err)
	assert.Equal(t, "Adelboden", data.Place, "cached copy")

	data, err = fetcher.RefreshEvent(ctx, 51234)
	require.NoError(t, err)
	assert.Equal(t, "Wengen", data.Place)

	data, err = fetcher.FetchEvent(ctx, 51234)
	require.NoError(t, err)
	assert.Equal(t, "Wengen", data.Place, "refresh overwrites the cache")
	assert.Equal(t, 2, calls)
}
