package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

type tableIndex struct {
	table   string
	name    string
	columns string
}

// taskIndexes back the per-bucket listing and the reorder ownership check.
var taskIndexes = []tableIndex{
	{"tasks", "idx_tasks_user_timeframe_position", "user_id, timeframe, position"},
	{"tasks", "idx_tasks_user_id", "user_id"},
}

// AddIndexes creates any missing secondary indexes. It goes through the GORM
// migrator so the same code runs on MySQL, PostgreSQL and SQLite.
func AddIndexes(db *gorm.DB, log *slog.Logger) error {
	for _, idx := range taskIndexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
