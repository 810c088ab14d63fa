package database

import "time"

// MergeRecord database model, one row per completed merge
type MergeRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FileCount   int       `json:"file_count"`
	InputBytes  int64     `json:"input_bytes"`
	OutputBytes int64     `json:"output_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionStats aggregates the merges completed this session
type SessionStats struct {
	MergesCompleted int64 `json:"merges_completed"`
	FilesMerged     int64 `json:"files_merged"`
	BytesIn         int64 `json:"bytes_in"`
	BytesOut        int64 `json:"bytes_out"`
}

// BytesSaved returns how much smaller the outputs were than their inputs.
func (s SessionStats) BytesSaved() int64 {
	return s.BytesIn - s.BytesOut
}
