// Package identity resolves user ids issued by the identity provider into display names.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/cache"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/interfaces"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/metrics"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(cfg config.ClientConfig, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.AuthToken,
		httpClient: httpclient.New(httpclient.Options{Timeout: cfg.Timeout, Proxy: cfg.Proxy}, logger),
		logger:     logger,
	}
}

type userResponse struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Username       string `json:"username"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

func (u *userResponse) displayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return u.ID
}

// DisplayName GET /v1/users/{id}
func (c *Client) DisplayName(ctx context.Context, userID string) (string, error) {
	if c.apiKey == "" {
		return "", apperr.Upstream("identity provider not configured", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", c.fail(fmt.Errorf("identity api status %d", resp.StatusCode))
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", c.fail(fmt.Errorf("decode user: %w", err))
	}
	return user.displayName(), nil
}

func (c *Client) fail(err error) error {
	metrics.UpstreamFailuresTotal.WithLabelValues("identity").Inc()
	return apperr.Upstream("failed to fetch user", err)
}

// CachedDirectory caches display names.
type CachedDirectory struct {
	next  interfaces.UserDirectory
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedDirectory(next interfaces.UserDirectory, c cache.Cache, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{next: next, cache: c, ttl: ttl}
}

func (d *CachedDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	var name string
	if cache.GetJSON(ctx, d.cache, "user", userID, &name) {
		return name, nil
	}
	name, err := d.next.DisplayName(ctx, userID)
	if err != nil {
		return "", err
	}
	_ = cache.SetJSON(ctx, d.cache, "user", userID, name, d.ttl)
	return name, nil
}

// Resolve returns the display name of userID, or userID itself when the lookup
// fails. Failures are logged, never returned.
func Resolve(ctx context.Context, dir interfaces.UserDirectory, logger *logrus.Logger, userID string) string {
	if dir == nil || userID == "" {
		return userID
	}
	name, err := dir.DisplayName(ctx, userID)
	if err != nil || name == "" {
		logger.WithError(err).WithField("user_id", userID).Warn("user lookup failed, showing raw id")
		return userID
	}
	return name
}
