package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/solatis/codematch/internal/types"
)

// List limits: DefaultScanLimit when the caller passes none, MaxScanLimit at most.
const (
	DefaultScanLimit = 50
	MaxScanLimit     = 10 * DefaultScanLimit
)

// Scan is one journal row: a matched candidate and its first valid parse.
// TemplateID, LookupCode and EmbeddedData are null when nothing matched.
type Scan struct {
	ScanID       types.ScanID    `db:"scan_id"`
	ProjectID    types.ProjectID `db:"project_id"`
	Code         string          `db:"code"`
	MatchCount   int             `db:"match_count"`
	TemplateID   sql.NullString  `db:"template_id"`
	LookupCode   sql.NullString  `db:"lookup_code"`
	EmbeddedData sql.NullInt64   `db:"embedded_data"`
	ScannedAt    time.Time       `db:"scanned_at"`
}

// TemplateCount is the number of journalled scans resolved by one template.
type TemplateCount struct {
	TemplateID string `db:"template_id"`
	ScanCount  int64  `db:"scan_count"`
}

// Journal appends and reads scan rows.
type Journal struct {
	queries *Queries
	now     func() time.Time
}

// NewJournal creates a journal over loaded queries.
func NewJournal(queries *Queries) *Journal {
	return &Journal{queries: queries, now: time.Now}
}

// Record inserts scan, stamping ScannedAt if unset.
func (j *Journal) Record(ctx context.Context, scan *Scan) error {
	if scan.ScanID == "" {
		return fmt.Errorf("scan_id required")
	}
	if scan.ScannedAt.IsZero() {
		scan.ScannedAt = j.now().UTC()
	}

	_, err := j.queries.Exec(ctx, "insert-scan",
		scan.ScanID,
		scan.ProjectID,
		scan.Code,
		scan.MatchCount,
		scan.TemplateID,
		scan.LookupCode,
		scan.EmbeddedData,
		scan.ScannedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record scan %s: %w", scan.ScanID, err)
	}
	return nil
}

// List returns the most recent scans for project, newest first.
// limit is clamped to MaxScanLimit.
func (j *Journal) List(ctx context.Context, project types.ProjectID, limit int) ([]Scan, error) {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	if limit > MaxScanLimit {
		limit = MaxScanLimit
	}
	var scans []Scan
	if err := j.queries.Select(ctx, "list-scans-by-project", &scans, project, limit); err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return scans, nil
}

// CountByTemplate aggregates matched scans for project per template.
func (j *Journal) CountByTemplate(ctx context.Context, project types.ProjectID) ([]TemplateCount, error) {
	var counts []TemplateCount
	if err := j.queries.Select(ctx, "count-scans-by-template", &counts, project); err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}
	return counts, nil
}
