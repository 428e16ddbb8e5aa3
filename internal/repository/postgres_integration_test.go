package repository

import (
	"context"
	"testing"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/softdelete"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgres starts a throwaway Postgres and migrates the schema.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres integration test in -short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fis_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func TestPostgres_SoftDeleteContract(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	inscriptions := NewInscriptionRepository(db)
	registrations := NewRegistrationRepository(db)

	ins := testutil.Inscription(t, db, model.StatusOpen)
	testutil.Competitor(t, db, 7, "Meillard", model.GenderMen)
	testutil.Link(t, db, ins.ID, 7, "100")
	testutil.Link(t, db, ins.ID, 7, "101")

	t.Run("empty predicate refused", func(t *testing.T) {
		_, err := softdelete.SoftDelete[model.InscriptionCompetitor](ctx, db, softdelete.Predicate{}, "x")
		require.ErrorIs(t, err, softdelete.ErrInvalidArgument)
	})

	t.Run("replace is atomic and live-only", func(t *testing.T) {
		created, err := registrations.ReplaceCodices(ctx, ins.ID, 7, []string{"101"}, "user_3")
		require.NoError(t, err)
		require.Len(t, created, 1)

		codices, err := registrations.Codices(ctx, 7, ins.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"101"}, codices)
	})

	t.Run("parent delete hides links", func(t *testing.T) {
		deleted, err := inscriptions.SoftDelete(ctx, ins.ID, "admin")
		require.NoError(t, err)
		require.Len(t, deleted, 1)
		require.NotNil(t, deleted[0].DeletedBy)
		assert.Equal(t, "admin", *deleted[0].DeletedBy)

		list, err := registrations.ListByInscription(ctx, ins.ID, "")
		require.NoError(t, err)
		assert.Empty(t, list)

		again, err := inscriptions.SoftDelete(ctx, ins.ID, "admin")
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("recap sees tombstones", func(t *testing.T) {
		changes, err := NewRecapRepository(db).Changes(ctx, time.Now().UTC().Add(-time.Hour), time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, changes, 3)
		assert.Len(t, changes[0].Deleted, 1)
		assert.Len(t, changes[1].Deleted, 2)
	})
}
