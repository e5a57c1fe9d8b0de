// Package analytics persists conversion telemetry and aggregates it into
// usage insights. Writes are best-effort; callers never fail a request over
// a sink error.
package analytics

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/utils"
)

// Schema for the analytics tables. Applied on open.
const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	success INTEGER NOT NULL,
	ocr_confidence REAL,
	duration_ms INTEGER,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_pair ON conversions(source, target);

CREATE TABLE IF NOT EXISTS errors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	error_type TEXT NOT NULL,
	source TEXT,
	target TEXT,
	message TEXT,
	timestamp INTEGER NOT NULL
);
`

// SQLiteSink is an AnalyticsSink backed by a SQLite database file.
type SQLiteSink struct {
	db *sql.DB
}

var _ interfaces.AnalyticsSink = (*SQLiteSink)(nil)

// NewSQLiteSink opens (creating if needed) the database at path and applies
// the schema.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, utils.NewSystemError("failed to open analytics database", err).WithContext("path", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, utils.NewSystemError("failed to apply analytics schema", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) LogConversion(ctx context.Context, ev interfaces.ConversionEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (source, target, success, ocr_confidence, duration_ms, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.SourceFormat, ev.TargetFormat, boolToInt(ev.Success), ev.OCRConfidence, ev.DurationMS,
		time.Now().Unix())
	return err
}

func (s *SQLiteSink) LogError(ctx context.Context, ev interfaces.ErrorEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO errors (error_type, source, target, message, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		ev.ErrorType, ev.SourceFormat, ev.TargetFormat, ev.Message, time.Now().Unix())
	return err
}

// Insights aggregates the event log: totals, success rate, the five most
// requested pairs, average OCR confidence, and the three most common
// failure clusters.
func (s *SQLiteSink) Insights(ctx context.Context) (*interfaces.Insights, error) {
	out := &interfaces.Insights{}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(success), 0), COALESCE(AVG(ocr_confidence), 0) FROM conversions`)
	var successRate float64
	if err := row.Scan(&out.TotalConversions, &successRate, &out.AverageConfidence); err != nil {
		return nil, utils.NewSystemError("failed to aggregate conversions", err)
	}
	out.SuccessRate = successRate * 100

	pairs, err := s.db.QueryContext(ctx,
		`SELECT source, target, COUNT(*) AS n FROM conversions
		 GROUP BY source, target ORDER BY n DESC LIMIT 5`)
	if err != nil {
		return nil, utils.NewSystemError("failed to query popular conversions", err)
	}
	defer pairs.Close()
	for pairs.Next() {
		var pc interfaces.PairCount
		if err := pairs.Scan(&pc.Source, &pc.Target, &pc.Count); err != nil {
			return nil, utils.NewSystemError("failed to scan conversion pair", err)
		}
		out.PopularConversions = append(out.PopularConversions, pc)
	}
	if err := pairs.Err(); err != nil {
		return nil, utils.NewSystemError("failed to iterate conversion pairs", err)
	}

	failures, err := s.db.QueryContext(ctx,
		`SELECT source || ' -> ' || target, error_type, COUNT(*) AS n FROM errors
		 GROUP BY source, target, error_type ORDER BY n DESC LIMIT 3`)
	if err != nil {
		return nil, utils.NewSystemError("failed to query failure patterns", err)
	}
	defer failures.Close()
	for failures.Next() {
		var fp interfaces.FailurePattern
		if err := failures.Scan(&fp.Conversion, &fp.Error, &fp.Count); err != nil {
			return nil, utils.NewSystemError("failed to scan failure pattern", err)
		}
		out.FailurePatterns = append(out.FailurePatterns, fp)
	}
	if err := failures.Err(); err != nil {
		return nil, utils.NewSystemError("failed to iterate failure patterns", err)
	}

	return out, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
