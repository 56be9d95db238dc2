package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenLocal opens the SQLite file used as the on-device document cache.
// Pass "file:name?mode=memory&cache=shared" for an in-memory database.
func OpenLocal(path string, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("platform/db: open sqlite %s: %w", path, err)
	}
	return gdb, nil
}
