package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored records.
type DataStats struct {
	TotalRecords int64        `json:"total_records"`
	TotalSets    int64        `json:"total_sets"`
	Exercises    int64        `json:"exercises"`
	ActiveDays   int64        `json:"active_days"`
	EarliestDate *time.Time   `json:"earliest_date"`
	LatestDate   *time.Time   `json:"latest_date"`
	BySource     []SourceStat `json:"by_source"`
}

// SourceStat counts records per ingest source.
type SourceStat struct {
	Source  string `json:"source"`
	Records int64  `json:"records"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT lower(name)), COUNT(DISTINCT date), MIN(date), MAX(date)
		 FROM records WHERE user_id = $1`, userID,
	).Scan(&stats.TotalRecords, &stats.Exercises, &stats.ActiveDays, &stats.EarliestDate, &stats.LatestDate)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM record_sets s
		 JOIN records r ON r.id = s.record_id
		 WHERE r.user_id = $1`, userID,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT source, COUNT(*) FROM records
		 WHERE user_id = $1
		 GROUP BY source
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying records by source: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s SourceStat
		if err := rows.Scan(&s.Source, &s.Records); err != nil {
			return nil, fmt.Errorf("scanning source stat: %w", err)
		}
		stats.BySource = append(stats.BySource, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
