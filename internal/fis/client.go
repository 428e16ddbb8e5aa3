package fis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/cache"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/interfaces"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/metrics"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// fetchFailedMsg is all callers see of a FIS API failure. There is no retry.
const fetchFailedMsg = "failed to fetch event data"

// Client FIS 赛事数据 API 客户端（只读）
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(cfg config.ClientConfig, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.AuthToken,
		httpClient: httpclient.New(httpclient.Options{Timeout: cfg.Timeout, Proxy: cfg.Proxy}, logger),
		logger:     logger,
	}
}

// eventResponse GET /events/{id}
type eventResponse struct {
	ID              uint64 `json:"id"`
	Place           string `json:"place"`
	PlaceNationCode string `json:"placeNationCode"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	Competitions    []struct {
		Codex          json.Number `json:"codex"`
		Date           string      `json:"date"`
		DisciplineCode string      `json:"disciplineCode"`
		CategoryCode   string      `json:"categoryCode"`
		GenderCode     string      `json:"genderCode"`
		Description    string      `json:"eventDescription"`
	} `json:"competitions"`
}

// FetchEvent loads the event document for eventID.
func (c *Client) FetchEvent(ctx context.Context, eventID uint64) (*model.EventData, error) {
	url := c.baseURL + "/events/" + strconv.FormatUint(eventID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Upstream(fetchFailedMsg, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(eventID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, c.fail(eventID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.fail(eventID, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200)))
	}

	var raw eventResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, c.fail(eventID, fmt.Errorf("decode response: %w", err))
	}
	return raw.toEventData(), nil
}

func (c *Client) fail(eventID uint64, err error) error {
	metrics.UpstreamFailuresTotal.WithLabelValues("fis").Inc()
	c.logger.WithError(err).WithField("event_id", eventID).Warn("FIS FetchEvent failed")
	return apperr.Upstream(fetchFailedMsg, err)
}

func (r *eventResponse) toEventData() *model.EventData {
	data := &model.EventData{
		Place:           r.Place,
		PlaceNationCode: r.PlaceNationCode,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Competitions:    make([]model.Competition, 0, len(r.Competitions)),
	}
	for _, comp := range r.Competitions {
		data.Competitions = append(data.Competitions, model.Competition{
			Codex:       comp.Codex.String(),
			Date:        comp.Date,
			Discipline:  comp.DisciplineCode,
			Category:    comp.CategoryCode,
			Gender:      comp.GenderCode,
			Description: comp.Description,
		})
	}
	return data
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// CachedFetcher keeps FIS event documents in the cache for ttl.
type CachedFetcher struct {
	next   interfaces.EventFetcher
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCachedFetcher(next interfaces.EventFetcher, c cache.Cache, ttl time.Duration, logger *logrus.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, cache: c, ttl: ttl, logger: logger}
}

func (f *CachedFetcher) FetchEvent(ctx context.Context, eventID uint64) (*model.EventData, error) {
	key := strconv.FormatUint(eventID, 10)
	var cached model.EventData
	if cache.GetJSON(ctx, f.cache, "fis-event", key, &cached) {
		return &cached, nil
	}
	return f.RefreshEvent(ctx, eventID)
}

// RefreshEvent skips the cached copy and overwrites it with the upstream document.
func (f *CachedFetcher) RefreshEvent(ctx context.Context, eventID uint64) (*model.EventData, error) {
	data, err := f.next.FetchEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	key := strconv.FormatUint(eventID, 10)
	if err := cache.SetJSON(ctx, f.cache, "fis-event", key, data, f.ttl); err != nil {
		f.logger.WithError(err).WithField("event_id", eventID).Warn("cache FIS event")
	}
	return data, nil
}
