// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"io"
	"testing"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database. One connection only, so that
// every statement sees the same memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// Logger returns a logger that writes nowhere.
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SampleEvent two races per gender.
func SampleEvent() *model.EventData {
	return &model.EventData{
		Place:           "Crans-Montana",
		PlaceNationCode: "SUI",
		StartDate:       "2026-01-10",
		EndDate:         "2026-01-11",
		Competitions: []model.Competition{
			{Codex: "100", Date: "2026-01-10", Discipline: "SL", Category: "FIS", Gender: "M"},
			{Codex: "101", Date: "2026-01-11", Discipline: "GS", Category: "FIS", Gender: "M"},
			{Codex: "200", Date: "2026-01-10", Discipline: "SL", Category: "FIS", Gender: "W"},
			{Codex: "201", Date: "2026-01-11", Discipline: "GS", Category: "FIS", Gender: "W"},
		},
	}
}

// Inscription inserts an inscription on SampleEvent.
func Inscription(t testing.TB, db *gorm.DB, status model.InscriptionStatus) *model.Inscription {
	t.Helper()
	ins := &model.Inscription{EventID: 51234, Status: status, CreatedBy: "user_1"}
	require.NoError(t, ins.SetEvent(SampleEvent()))
	require.NoError(t, db.Create(ins).Error)
	return ins
}

// Competitor inserts a competitor.
func Competitor(t testing.TB, db *gorm.DB, id uint64, last, gender string) *model.Competitor {
	t.Helper()
	sl := 42.5
	birth := time.Date(2004, 3, 2, 0, 0, 0, 0, time.UTC)
	c := &model.Competitor{
		CompetitorID: id,
		FisCode:      "FIS" + last,
		LastName:     last,
		FirstName:    "Test",
		NationCode:   "SUI",
		Gender:       gender,
		Birthdate:    &birth,
		SLPoints:     &sl,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Link registers a competitor on one codex.
func Link(t testing.TB, db *gorm.DB, inscriptionID, competitorID uint64, codex string) *model.InscriptionCompetitor {
	t.Helper()
	l := &model.InscriptionCompetitor{
		InscriptionID: inscriptionID,
		CompetitorID:  competitorID,
		CodexNumber:   codex,
		AddedBy:       "user_1",
	}
	require.NoError(t, db.Create(l).Error)
	return l
}

// Coach attaches a coach to an inscription.
func Coach(t testing.TB, db *gorm.DB, inscriptionID uint64, last, gender string) *model.InscriptionCoach {
	t.Helper()
	c := &model.InscriptionCoach{
		InscriptionID: inscriptionID,
		FirstName:     "Coach",
		LastName:      last,
		Team:          "SUI",
		Gender:        gender,
		StartDate:     time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC),
		AddedBy:       "user_1",
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
