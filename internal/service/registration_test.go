package service

import (
	"context"
	"testing"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRegistrationService(t *testing.T) (*RegistrationService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewRegistrationService(
		repository.NewInscriptionRepository(db),
		repository.NewCompetitorRepository(db),
		repository.NewRegistrationRepository(db),
		testutil.Logger(),
	)
	return svc, db
}

func TestRegistrationService_Register(t *testing.T) {
	svc, db := newRegistrationService(t)
	ctx := context.Background()
	ins := testutil.Inscription(t, db, model.StatusOpen)
	testutil.Competitor(t, db, 7, "Meillard", model.GenderMen)

	res, err := svc.Register(ctx, ins.ID, 7, []string{"100"}, "user_2")
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	assert.Empty(t, res.Skipped)

	res, err = svc.Register(ctx, ins.ID, 7, []string{"100", "101", "101"}, "user_2")
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "101", res.Added[0].CodexNumber)
	assert.Equal(t, []string{"100"}, res.Skipped)

	codices, err := svc.Codices(ctx, 7, ins.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "101"}, codices)

	list, err := svc.ListCompetitors(ctx, ins.ID, "101")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"101"}, list[0].Codices)
}

func TestRegistrationService_RegisterRejects(t *testing.T) {
	svc, db := newRegistrationService(t)
	ctx := context.Background()
	open := testutil.Inscription(t, db, model.StatusOpen)
	validated := testutil.Inscription(t, db, model.StatusValidated)
	deleted := testutil.Inscription(t, db, model.StatusOpen)
	_, err := repository.NewInscriptionRepository(db).SoftDelete(ctx, deleted.ID, "admin")
	require.NoError(t, err)
	testutil.Competitor(t, db, 7, "Meillard", model.GenderMen)

	tests := []struct {
		name        string
		inscription uint64
		competitor  uint64
		codices     []string
		want        error
	}{
		{"no codex", open.ID, 7, nil, apperr.ErrInvalidArgument},
		{"unknown codex", open.ID, 7, []string{"999"}, apperr.ErrInvalidArgument},
		{"women's race", open.ID, 7, []string{"200"}, apperr.ErrInvalidArgument},
		{"unknown competitor", open.ID, 8, []string{"100"}, apperr.ErrNotFound},
		{"validated inscription", validated.ID, 7, []string{"100"}, apperr.ErrConflict},
		{"deleted inscription", deleted.ID, 7, []string{"100"}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.inscription, tt.competitor, tt.codices, "user_2")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var n int64
	require.NoError(t, db.Model(&model.InscriptionCompetitor{}).Count(&n).Error)
	assert.Zero(t, n, "rejected calls write nothing")
}

func TestRegistrationService_ReplaceAndUnregister(t *testing.T) {
	svc, db := newRegistrationService(t)
	ctx := context.Background()
	ins := testutil.Inscription(t, db, model.StatusOpen)
	testutil.Competitor(t, db, 7, "Meillard", model.GenderMen)
	testutil.Link(t, db, ins.ID, 7, "100")

	_, err := svc.ReplaceCodices(ctx, ins.ID, 7, []string{"999"}, "user_2")
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	codices, err := svc.Codices(ctx, 7, ins.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, codices, "invalid replace leaves registrations alone")

	created, err := svc.ReplaceCodices(ctx, ins.ID, 7, []string{"101"}, "user_2")
	require.NoError(t, err)
	require.Len(t, created, 1)

	removed, err := svc.Unregister(ctx, ins.ID, 7, "", "user_2")
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "101", removed[0].CodexNumber)

	_, err = svc.Unregister(ctx, ins.ID, 7, "", "user_2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	codices, err = svc.Codices(ctx, 7, 0)
	require.NoError(t, err)
	assert.NotNil(t, codices)
	assert.Empty(t, codices)
}

func TestRegistrationService_CompetitorViews(t *testing.T) {
	svc, db := newRegistrationService(t)
	ctx := context.Background()
	ins := testutil.Inscription(t, db, model.StatusOpen)
	testutil.Competitor(t, db, 7, "Meillard", model.GenderMen)
	testutil.Link(t, db, ins.ID, 7, "100")

	registered, err := svc.RegisteredCompetitors(ctx, repository.RegisteredFilter{Gender: "M"})
	require.NoError(t, err)
	require.Len(t, registered, 1)

	_, err = svc.RegisteredCompetitors(ctx, repository.RegisteredFilter{Gender: "X"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	detail, err := svc.CompetitorInscriptions(ctx, 7)
	require.NoError(t, err)
	require.Len(t, detail, 1)
	assert.Equal(t, ins.ID, detail[0].InscriptionID)

	_, err = svc.CompetitorInscriptions(ctx, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
