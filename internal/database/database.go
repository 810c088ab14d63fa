package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database stores session statistics. With the default in-memory DSN
// nothing survives the process; there is no cross-session persistence.
type Database struct {
	db *gorm.DB
}

// NewDatabase creates a new database instance
func NewDatabase(dsn string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	database := &Database{db: db}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&MergeRecord{}); err != nil {
		return nil, err
	}

	return database, nil
}

// RecordMerge stores the outcome of one completed merge.
func (d *Database) RecordMerge(fileCount int, inputBytes, outputBytes int64) error {
	record := MergeRecord{
		FileCount:   fileCount,
		InputBytes:  inputBytes,
		OutputBytes: outputBytes,
	}
	return d.db.Create(&record).Error
}

// Stats aggregates every merge recorded this session.
func (d *Database) Stats() (*SessionStats, error) {
	var records []MergeRecord
	if err := d.db.Find(&records).Error; err != nil {
		return nil, err
	}

	stats := &SessionStats{}
	for _, r := range records {
		stats.MergesCompleted++
		stats.FilesMerged += int64(r.FileCount)
		stats.BytesIn += r.InputBytes
		stats.BytesOut += r.OutputBytes
	}
	return stats, nil
}
