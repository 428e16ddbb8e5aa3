package service

import (
	"context"
	"testing"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoachService(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCoachService(repository.NewInscriptionRepository(db), repository.NewCoachRepository(db), testutil.Logger())
	ins := testutil.Inscription(t, db, model.StatusOpen)

	start := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	valid := AddCoachInput{FirstName: "Didier", LastName: "Plaschy", Team: "Valais", Gender: "both", StartDate: start, EndDate: start.AddDate(0, 0, 2)}

	invalid := []struct {
		name  string
		edit  func(in *AddCoachInput)
		field string
	}{
		{"missing last name", func(in *AddCoachInput) { in.LastName = "  " }, "lastName"},
		{"bad gender", func(in *AddCoachInput) { in.Gender = "X" }, "gender"},
		{"ends before start", func(in *AddCoachInput) { in.EndDate = start.AddDate(0, 0, -1) }, "endDate"},
		{"no start", func(in *AddCoachInput) { in.StartDate = time.Time{} }, "startDate"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			_, err := svc.Add(ctx, ins.ID, in, "user_1")
			var fe *apperr.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}

	coach, err := svc.Add(ctx, ins.ID, valid, "user_1")
	require.NoError(t, err)
	assert.Equal(t, model.GenderBoth, coach.Gender)

	coaches, err := svc.List(ctx, ins.ID)
	require.NoError(t, err)
	require.Len(t, coaches, 1)

	_, err = svc.Remove(ctx, ins.ID, coach.ID, "user_1")
	require.NoError(t, err)
	_, err = svc.Remove(ctx, ins.ID, coach.ID, "user_1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	coaches, err = svc.List(ctx, ins.ID)
	require.NoError(t, err)
	assert.NotNil(t, coaches)
	assert.Empty(t, coaches)

	_, err = svc.List(ctx, ins.ID+100)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCompetitorService_Upsert(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCompetitorService(repository.NewCompetitorRepository(db), testutil.Logger())

	n, err := svc.Upsert(ctx, []CompetitorInput{
		{CompetitorID: 1, FisCode: "6531", LastName: "Odermatt", FirstName: "Marco", NationCode: "sui", Gender: "m", Birthdate: "1997-10-08"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "SUI", c.NationCode)
	require.NotNil(t, c.Birthdate)
	assert.Equal(t, 1997, c.Birthdate.Year())

	_, err = svc.Upsert(ctx, []CompetitorInput{
		{CompetitorID: 2, FisCode: "1", LastName: "A", FirstName: "B", NationCode: "SUI", Gender: "M"},
		{CompetitorID: 3, FisCode: "2", LastName: "C", FirstName: "D", NationCode: "SUI", Gender: "M", Birthdate: "08.10.1997"},
	})
	var fe *apperr.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "birthdate", fe.Field)

	list, err := svc.Search(ctx, repository.CompetitorFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1, "a failing row rejects the whole batch")
}
