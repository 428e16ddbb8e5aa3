package identity

import (
	"context"
	"errors"
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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func TestClient_DisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/users/user_named":
			_, _ = io.WriteString(w, `{"id":"user_named","first_name":"Ramon","last_name":"Zenhäusern"}`)
		case "/v1/users/user_mail":
			_, _ = io.WriteString(w, `{"id":"user_mail","email_addresses":[{"email_address":"r@ski.ch"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(config.ClientConfig{BaseURL: srv.URL, AuthToken: "sk_test"}, quietLogger())

	name, err := c.DisplayName(context.Background(), "user_named")
	require.NoError(t, err)
	assert.Equal(t, "Ramon Zenhäusern", name)

	name, err = c.DisplayName(context.Background(), "user_mail")
	require.NoError(t, err)
	assert.Equal(t, "r@ski.ch", name)

	_, err = c.DisplayName(context.Background(), "user_missing")
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestResolve_FallsBackToRawID(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("DisplayName", mock.Anything, "user_1").Return("Jane Doe", nil)
	dir.On("DisplayName", mock.Anything, "user_2").Return("", errors.New("timeout"))

	ctx := context.Background()
	assert.Equal(t, "Jane Doe", Resolve(ctx, dir, quietLogger(), "user_1"))
	assert.Equal(t, "user_2", Resolve(ctx, dir, quietLogger(), "user_2"))
	assert.Equal(t, "user_3", Resolve(ctx, nil, quietLogger(), "user_3"))
	dir.AssertExpectations(t)
}

func TestCachedDirectory(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)

	dir := &mockDirectory{}
	dir.On("DisplayName", mock.Anything, "user_1").Return("Jane Doe", nil).Once()

	cached := NewCachedDirectory(dir, rc, time.Minute)
	for i := 0; i < 3; i++ {
		name, err := cached.DisplayName(context.Background(), "user_1")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", name)
	}
	dir.AssertNumberOfCalls(t, "DisplayName", 1)
}
