package service

import (
	"context"
	"testing"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/interfaces"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecapService_Run(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := &mockUsers{}
	users.On("DisplayName", mock.Anything, "user_1").Return("Jane Doe", nil)
	users.On("DisplayName", mock.Anything, "user_2").Return("John Roe", nil)
	mailer := &mockMailer{}

	svc, err := NewRecapService(repository.NewRecapRepository(db), users, mailer, config.RecapConfig{
		Timezone:   "UTC",
		Recipients: []string{"board@ski.test"},
		Subject:    "Recap",
	}, testutil.Logger())
	require.NoError(t, err)

	ins := testutil.Inscription(t, db, model.StatusOpen)
	testutil.Competitor(t, db, 7, "Meillard", model.GenderMen)
	testutil.Link(t, db, ins.ID, 7, "100")
	_, err = repository.NewRegistrationRepository(db).Remove(ctx, ins.ID, 7, "100", "user_2")
	require.NoError(t, err)

	now := time.Now().UTC()

	t.Run("dry run", func(t *testing.T) {
		report, err := svc.Run(ctx, now, true)
		require.NoError(t, err)
		assert.False(t, report.Sent)
		assert.Equal(t, 3, report.Total)
		require.Len(t, report.Sections, 3)
		require.Len(t, report.Sections[1].Deleted, 1)
		assert.Equal(t, "John Roe", report.Sections[1].Deleted[0].Actor)
		assert.Contains(t, report.HTML, "competitor 7 codex 100")
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("sent", func(t *testing.T) {
		mailer.On("Send", mock.Anything, mock.MatchedBy(func(e interfaces.Email) bool {
			return e.Subject == "Recap "+now.Format("2006-01-02") && len(e.To) == 1
		})).Return(nil).Once()
		report, err := svc.Run(ctx, now, false)
		require.NoError(t, err)
		assert.True(t, report.Sent)
		mailer.AssertExpectations(t)
	})

	t.Run("quiet day", func(t *testing.T) {
		report, err := svc.Run(ctx, now.AddDate(0, 0, -3), false)
		require.NoError(t, err)
		assert.Zero(t, report.Total)
		assert.False(t, report.Sent)
	})
}

func TestRecapService_RunTrailingCoversEvenings(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := &mockUsers{}
	users.On("DisplayName", mock.Anything, "user_1").Return("Jane Doe", nil)
	svc, err := NewRecapService(repository.NewRecapRepository(db), users, &mockMailer{}, config.RecapConfig{Timezone: "UTC"}, testutil.Logger())
	require.NoError(t, err)

	ins := testutil.Inscription(t, db, model.StatusOpen)
	created := time.Date(2026, 1, 10, 21, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(ins).UpdateColumn("created_at", created).Error)

	first, err := svc.RunTrailing(ctx, time.Date(2026, 1, 10, 20, 0, 0, 200e6, time.UTC), true)
	require.NoError(t, err)
	assert.Zero(t, first.Total)

	second, err := svc.RunTrailing(ctx, time.Date(2026, 1, 11, 20, 0, 0, 400e6, time.UTC), true)
	require.NoError(t, err)
	assert.Equal(t, first.To, second.From, "windows are contiguous")
	assert.Equal(t, "2026-01-11", second.Day)
	assert.Equal(t, 1, second.Total)
	require.Len(t, second.Sections[0].Inserted, 1)
}

func TestRecapService_RunTrailingAcrossDST(t *testing.T) {
	svc, err := NewRecapService(repository.NewRecapRepository(testutil.NewDB(t)), &mockUsers{}, &mockMailer{}, config.RecapConfig{Timezone: "Europe/Zurich"}, testutil.Logger())
	require.NoError(t, err)

	// 2026-03-29 is 23 hours long in Zurich.
	report, err := svc.RunTrailing(context.Background(), time.Date(2026, 3, 29, 18, 0, 0, 0, time.UTC), true)
	require.NoError(t, err)
	assert.Equal(t, 23*time.Hour, report.To.Sub(report.From))
	assert.Equal(t, 20, report.From.Hour())
	assert.Equal(t, 20, report.To.Hour())
}

func TestNewRecapService_BadTimezone(t *testing.T) {
	_, err := NewRecapService(nil, nil, nil, config.RecapConfig{Timezone: "Mars/Olympus"}, testutil.Logger())
	assert.Error(t, err)
}

func TestParseRecapDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Zurich")
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	today, err := ParseRecapDay("", loc, now)
	require.NoError(t, err)
	assert.Equal(t, 2, today.Day(), "late UTC evening is already the next day in Zurich")

	day, err := ParseRecapDay("2026-02-14", loc, now)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-14", day.Format("2006-01-02"))

	_, err = ParseRecapDay("14/02/2026", loc, now)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
