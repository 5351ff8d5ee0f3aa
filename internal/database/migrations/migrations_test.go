package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"nudem-backend/internal/database/migrations"
	"nudem-backend/internal/models"
)

func TestRun_CreatesTablesOnSQLite(t *testing.T) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	defer bunDB.Close()

	ctx := context.Background()
	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	require.NoError(t, runner.Run(ctx))

	// Both tables accept inserts afterwards
	_, err = bunDB.NewInsert().Model(&models.User{ID: "u1", Prenom: "Awa", Nom: "Ndiaye", Email: "awa@example.sn", Password: "hash"}).Exec(ctx)
	assert.NoError(t, err)

	// Running again is a no-op, not an error
	assert.NoError(t, runner.Run(ctx))
}

func TestRun_DisabledAutoMigrate(t *testing.T) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	defer bunDB.Close()

	opts := migrations.MigrateOptions{AutoMigrate: false}
	require.NoError(t, migrations.NewRunner(bunDB, opts).Run(context.Background()))

	// No tables were created
	_, err = bunDB.NewInsert().Model(&models.User{ID: "u1"}).Exec(context.Background())
	assert.Error(t, err)
}
