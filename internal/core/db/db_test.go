package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/codematch/internal/types"
)

func openTestDB(t *testing.T) (*sqlx.DB, *Queries) {
	t.Helper()
	ctx := context.Background()

	conn, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "codematch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, MigrateUp(ctx, conn))

	queries, err := LoadQueries(conn)
	require.NoError(t, err)
	return conn, queries
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantSource string
		wantErr    bool
	}{
		{"sqlite://data/codematch.db", "sqlite3", "data/codematch.db", false},
		{"sqlite:///var/lib/codematch.db", "sqlite3", "/var/lib/codematch.db", false},
		{"postgres://u:p@localhost:5432/cm?sslmode=disable", "postgres", "postgres://u:p@localhost:5432/cm?sslmode=disable", false},
		{"mysql://localhost/cm", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, source, err := parseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestMigrateUp(t *testing.T) {
	ctx := context.Background()
	conn, _ := openTestDB(t)

	// second run is a no-op
	require.NoError(t, MigrateUp(ctx, conn))

	statuses, err := MigrateStatus(ctx, conn)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "001_initial_schema.sql", statuses[0].ID)
	assert.True(t, statuses[0].Applied)
	assert.NotNil(t, statuses[0].AppliedAt)
}

func TestMigrateUpDetectsTampering(t *testing.T) {
	ctx := context.Background()
	conn, _ := openTestDB(t)

	_, err := conn.Exec("UPDATE migrations SET checksum = 'deadbeef'")
	require.NoError(t, err)

	err = MigrateUp(ctx, conn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestSplitStatements(t *testing.T) {
	sql := "-- header\nCREATE TABLE a (x INT);\n\n-- note\nCREATE INDEX i ON a (x);\n"
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, splitStatements(sql))
}

func TestQueriesUnknownName(t *testing.T) {
	_, queries := openTestDB(t)

	_, err := queries.Exec(context.Background(), "no-such-query")
	assert.EqualError(t, err, "query not found: no-such-query")
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	_, queries := openTestDB(t)
	journal := NewJournal(queries)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scans := []*Scan{
		{
			ScanID:       types.NewScanID(),
			ProjectID:    "acme",
			Code:         "2123457005009",
			MatchCount:   2,
			TemplateID:   sql.NullString{String: "ean13_instore", Valid: true},
			LookupCode:   sql.NullString{String: "12345", Valid: true},
			EmbeddedData: sql.NullInt64{Int64: 500, Valid: true},
			ScannedAt:    base,
		},
		{
			ScanID:     types.NewScanID(),
			ProjectID:  "acme",
			Code:       "4006381333931",
			MatchCount: 1,
			TemplateID: sql.NullString{String: "default", Valid: true},
			LookupCode: sql.NullString{String: "4006381333931", Valid: true},
			ScannedAt:  base.Add(time.Minute),
		},
		{
			ScanID:    types.NewScanID(),
			ProjectID: "other",
			Code:      "",
			ScannedAt: base.Add(2 * time.Minute),
		},
	}
	for _, s := range scans {
		require.NoError(t, journal.Record(ctx, s))
	}

	got, err := journal.List(ctx, "acme", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, scans[1].ScanID, got[0].ScanID, "newest first")
	assert.Equal(t, scans[0].ScanID, got[1].ScanID)
	assert.Equal(t, "12345", got[1].LookupCode.String)
	assert.Equal(t, int64(500), got[1].EmbeddedData.Int64)
	assert.False(t, got[0].EmbeddedData.Valid)

	limited, err := journal.List(ctx, "acme", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	other, err := journal.List(ctx, "other", 10)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.False(t, other[0].TemplateID.Valid)

	counts, err := journal.CountByTemplate(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []TemplateCount{
		{TemplateID: "default", ScanCount: 1},
		{TemplateID: "ean13_instore", ScanCount: 1},
	}, counts)
}

func TestJournalListClampsLimit(t *testing.T) {
	ctx := context.Background()
	_, queries := openTestDB(t)
	journal := NewJournal(queries)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < MaxScanLimit+5; i++ {
		require.NoError(t, journal.Record(ctx, &Scan{
			ScanID:    types.NewScanID(),
			ProjectID: "acme",
			Code:      "4006381333931",
			ScannedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := journal.List(ctx, "acme", 1<<30)
	require.NoError(t, err)
	assert.Len(t, got, MaxScanLimit)

	got, err = journal.List(ctx, "acme", -1)
	require.NoError(t, err)
	assert.Len(t, got, DefaultScanLimit)
}

func TestJournalRecordStampsTime(t *testing.T) {
	_, queries := openTestDB(t)
	journal := NewJournal(queries)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	journal.now = func() time.Time { return fixed }

	scan := &Scan{ScanID: types.NewScanID(), ProjectID: "acme", Code: "x"}
	require.NoError(t, journal.Record(context.Background(), scan))
	assert.Equal(t, fixed, scan.ScannedAt)

	assert.Error(t, journal.Record(context.Background(), &Scan{Code: "x"}))
}

func TestAPIKeys(t *testing.T) {
	ctx := context.Background()
	_, queries := openTestDB(t)
	keys := NewAPIKeys(queries)

	key := &APIKey{
		APIKeyID:  "key-1",
		ProjectID: "acme",
		Name:      "till 1",
		SecretID:  "0123456789abcdef0123456789abcdef",
		KeyHash:   "abc123",
	}
	require.NoError(t, keys.Insert(ctx, key))
	assert.False(t, key.CreatedAt.IsZero())

	var stored APIKey
	require.NoError(t, queries.Get(ctx, "get-api-key-by-hash", &stored, "abc123"))
	assert.Equal(t, types.ProjectID("acme"), stored.ProjectID)
	assert.False(t, stored.RevokedAt.Valid)

	// duplicate hash violates the unique constraint
	dup := *key
	dup.APIKeyID = "key-2"
	assert.Error(t, keys.Insert(ctx, &dup))

	require.NoError(t, keys.Revoke(ctx, "key-1"))
	assert.ErrorIs(t, keys.Revoke(ctx, "key-1"), ErrAPIKeyNotFound)

	listed, err := keys.ListByProject(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].RevokedAt.Valid)
}
