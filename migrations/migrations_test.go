package migrations

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesAllTables(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "project.db")

	require.NoError(t, Migrate("sqlite3", dsn))
	require.NoError(t, Migrate("sqlite3", dsn), "second run must be a no-op")

	db, err := sqlx.Open("sqlite3", dsn)
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	err = db.Select(&tables, `
		select name from sqlite_master
		where type = 'table' and name not like 'sqlite_%' and name != 'schema_migrations'
		order by name
	`)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"materials",
		"order_products",
		"orders",
		"plant_materials",
		"plant_products",
		"plants",
		"product_materials",
		"products",
		"storage_materials",
		"storage_products",
	}, tables)
}

func TestMigrate_KeepsExistingTables(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "project.db")

	db, err := sqlx.Open("sqlite3", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		create table plants (id integer primary key autoincrement, name text not null unique, location text, capacity integer);
		insert into plants(name, location, capacity) values ('Legacy', 'Old Site', 10);
	`)
	require.NoError(t, err)

	require.NoError(t, Migrate("sqlite3", dsn))

	var n int
	require.NoError(t, db.Get(&n, `select count(*) from plants`))
	assert.Equal(t, 1, n)
}

func TestMigrate_UnsupportedDriver(t *testing.T) {
	assert.Error(t, Migrate("oracle", "whatever"))
}
