package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestClient_Send(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		got = sendRequest{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"id":"em_1"}`)
	}))
	defer srv.Close()

	c := NewClient(config.EmailConfig{BaseURL: srv.URL, APIKey: "re_test", From: "noreply@ski.ch"}, quietLogger())

	t.Run("default sender", func(t *testing.T) {
		err := c.Send(context.Background(), interfaces.Email{
			To:      []string{"entries@fis-ski.com"},
			CC:      []string{"coach@ski.ch"},
			Subject: "Entry form",
			HTML:    "<p>hi</p>",
		})
		require.NoError(t, err)
		assert.Equal(t, "noreply@ski.ch", got.From)
		assert.Equal(t, []string{"coach@ski.ch"}, got.CC)
		assert.Equal(t, "<p>hi</p>", got.HTML)
	})

	t.Run("sender override", func(t *testing.T) {
		err := c.Send(context.Background(), interfaces.Email{
			To:      []string{"entries@fis-ski.com"},
			From:    "secretary@ski.ch",
			Subject: "Entry form",
		})
		require.NoError(t, err)
		assert.Equal(t, "secretary@ski.ch", got.From)
		assert.Empty(t, got.CC)
	})

	t.Run("no recipients", func(t *testing.T) {
		err := c.Send(context.Background(), interfaces.Email{Subject: "x"})
		var fe *apperr.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "to", fe.Field)
	})
}

func TestClient_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"invalid from address"}`)
	}))
	defer srv.Close()

	c := NewClient(config.EmailConfig{BaseURL: srv.URL, APIKey: "re_test"}, quietLogger())
	err := c.Send(context.Background(), interfaces.Email{To: []string{"a@b.c"}, Subject: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Contains(t, err.Error(), "invalid from address")
}

func TestNew_NoopWithoutKey(t *testing.T) {
	m := New(config.EmailConfig{}, quietLogger())
	_, ok := m.(*Noop)
	require.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), interfaces.Email{To: []string{"a@b.c"}}))
}
