package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/migrations"
	"github.com/pkordes/trip-planner/testutil"
)

// TestMigrations applies every migration through migrations.Up, checks the
// schema the repos rely on, then rolls everything back. Other packages share
// this database, so it starts from version 0 and ends with the schema
// reapplied.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")
	t.Cleanup(func() { _, _ = migrations.Up(context.Background(), db) })

	results, err := migrations.Up(ctx, db)
	require.NoError(t, err, "migrations up")
	assert.Len(t, results, 3)

	t.Run("tables", func(t *testing.T) {
		for _, table := range []string{"trips", "expenses", "expense_categories"} {
			assert.True(t, tableExists(t, db, table), "expected table %q", table)
		}
	})

	t.Run("trip document defaults", func(t *testing.T) {
		var members, funds, days string
		err := db.QueryRowContext(ctx, `
			INSERT INTO trips (owner_id, title, timezone, base_currency)
			VALUES ('migrations-test', 'Tokyo', 'Asia/Tokyo', 'JPY')
			RETURNING members::text, shared_funds::text, days::text`).Scan(&members, &funds, &days)
		require.NoError(t, err)
		assert.Equal(t, "[]", members)
		assert.Equal(t, "[]", funds)
		assert.Equal(t, "[]", days)
	})

	t.Run("deleting a trip removes its expenses", func(t *testing.T) {
		tripID, expenseID := uuid.New(), uuid.New()
		_, err := db.ExecContext(ctx, `
			INSERT INTO trips (id, owner_id, title, timezone, base_currency)
			VALUES ($1, 'migrations-test', 'Osaka', 'Asia/Tokyo', 'JPY')`, tripID)
		require.NoError(t, err)
		// beneficiary_member and spent_on are nullable: everyone, no date.
		_, err = db.ExecContext(ctx, `
			INSERT INTO expenses (id, trip_id, amount, rate, base_amount, payer)
			VALUES ($1, $2, 1200, 1, 1200, 'Amy')`, expenseID, tripID)
		require.NoError(t, err)

		_, err = db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, tripID)
		require.NoError(t, err)

		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT count(*) FROM expenses WHERE id = $1`, expenseID).Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("category slug is unique per owner", func(t *testing.T) {
		const insert = `INSERT INTO expense_categories (owner_id, slug, name) VALUES ($1, 'street-food', $2)`
		_, err := db.ExecContext(ctx, insert, "user-a", "Street Food")
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, insert, "user-a", "street food")
		assert.Error(t, err)
		_, err = db.ExecContext(ctx, insert, "user-b", "Street food")
		assert.NoError(t, err)
	})

	t.Run("category needs an owner", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `INSERT INTO expense_categories (slug, name) VALUES ('tea', 'Tea')`)
		assert.Error(t, err)
	})

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	for _, table := range []string{"trips", "expenses", "expense_categories"} {
		assert.False(t, tableExists(t, db, table), "expected table %q to be dropped", table)
	}
}

// tableExists reports whether table is in the public schema.
func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()

	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			AND   table_name   = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists),
		"check table existence for %q", table)
	return exists
}
