package database

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-sphere/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		DBDriver:   driver,
		DBHost:     "db",
		DBPort:     "1234",
		DBUser:     "u",
		DBPassword: "p",
		DBName:     "tasks",
	}
}

func TestDSN(t *testing.T) {
	dsn, err := DSN(testConfig("mysql"))
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(db:1234)/tasks?charset=utf8mb4&parseTime=True&loc=Local", dsn)

	dsn, err = DSN(testConfig("postgres"))
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=db port=1234 user=u password=p dbname=tasks")

	_, err = DSN(testConfig("oracle"))
	assert.ErrorIs(t, err, config.ErrUnknownDBDriver)
}

func TestDialector(t *testing.T) {
	d, err := Dialector(testConfig("postgres"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(testConfig("mysql"))
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())
}

func TestMigrate_CreatesIndexesIdempotently(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, Migrate(db, log))
	require.NoError(t, Migrate(db, log))

	for _, idx := range taskIndexes {
		assert.True(t, db.Migrator().HasIndex(idx.table, idx.name), "missing index %s", idx.name)
	}
}
