package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/interfaces"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/metrics"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/utils/httpclient"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client 事务邮件 API 客户端（Resend 风格 REST 接口）
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	logger     *logrus.Logger
}

// New returns the REST client when an API key is configured, the noop mailer otherwise.
func New(cfg config.EmailConfig, logger *logrus.Logger) interfaces.Mailer {
	if cfg.APIKey == "" {
		logger.Info("email api key not configured, using noop mailer")
		return &Noop{logger: logger}
	}
	return NewClient(cfg, logger)
}

func NewClient(cfg config.EmailConfig, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		httpClient: httpclient.New(httpclient.Options{Timeout: cfg.Timeout, Proxy: cfg.Proxy}, logger),
		logger:     logger,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	CC      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// Send hands the message to the provider. Delivery is not tracked.
func (c *Client) Send(ctx context.Context, email interfaces.Email) error {
	if len(email.To) == 0 {
		return apperr.Field("to", "at least one recipient is required")
	}
	from := email.From
	if from == "" {
		from = c.from
	}
	body, err := json.Marshal(sendRequest{
		From:    from,
		To:      email.To,
		CC:      email.CC,
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(email, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var result sendResponse
	_ = json.Unmarshal(respBody, &result)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := result.Message
		if msg == "" {
			msg = string(respBody)
		}
		return c.fail(email, fmt.Errorf("email api %d: %s", resp.StatusCode, msg))
	}

	metrics.EmailsSentTotal.WithLabelValues(kind(email), "ok").Inc()
	c.logger.WithFields(logrus.Fields{
		"email_id": result.ID,
		"to":       email.To,
		"subject":  email.Subject,
	}).Info("email sent")
	return nil
}

func (c *Client) fail(email interfaces.Email, err error) error {
	metrics.EmailsSentTotal.WithLabelValues(kind(email), "error").Inc()
	metrics.UpstreamFailuresTotal.WithLabelValues("email").Inc()
	c.logger.WithError(err).WithField("subject", email.Subject).Warn("email send failed")
	return apperr.Upstream("failed to send email", err)
}

func kind(email interfaces.Email) string {
	if strings.Contains(strings.ToLower(email.Subject), "recap") {
		return "recap"
	}
	return "entry_form"
}

// Noop logs instead of sending.
type Noop struct {
	logger *logrus.Logger
}

func (n *Noop) Send(_ context.Context, email interfaces.Email) error {
	if len(email.To) == 0 {
		return apperr.Field("to", "at least one recipient is required")
	}
	n.logger.WithFields(logrus.Fields{
		"to":      email.To,
		"cc":      email.CC,
		"subject": email.Subject,
	}).Info("noop mailer: email not sent")
	return nil
}
