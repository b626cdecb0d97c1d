// Package api implements the codematch.v1.CodeService gRPC API.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/codematch/internal/core/auth"
	"github.com/solatis/codematch/internal/core/config"
	"github.com/solatis/codematch/internal/core/db"
	"github.com/solatis/codematch/internal/core/metrics"
	"github.com/solatis/codematch/internal/templates"
	"github.com/solatis/codematch/internal/types"
)

// Journal records and lists scans. Implemented by *db.Journal.
type Journal interface {
	Record(ctx context.Context, scan *db.Scan) error
	List(ctx context.Context, project types.ProjectID, limit int) ([]db.Scan, error)
}

// CodeService implements CodeServiceServer.
// Thin orchestration layer over the template registry and the scan journal.
type CodeService struct {
	registry *templates.Registry
	journal  Journal
	cfg      *config.CodeAPIConfig
}

var _ CodeServiceServer = (*CodeService)(nil)

// NewCodeService creates the service. The registry is shared with other callers.
func NewCodeService(registry *templates.Registry, journal Journal, cfg *config.CodeAPIConfig) (*CodeService, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if journal == nil {
		return nil, fmt.Errorf("journal cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	return &CodeService{registry: registry, journal: journal, cfg: cfg}, nil
}

func (s *CodeService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}

// Match classifies {code}. Response:
//
//	{scan_id, results: [{template_id, project_id, lookup_code, embedded_data?, price_data?}]}
//
// results holds every valid parse, most specific template first. Each call
// appends one row to the scan journal.
func (s *CodeService) Match(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	code, err := stringField(req, "code", true)
	if err != nil {
		return nil, err
	}
	if len([]rune(code)) > s.cfg.MaxCodeLength {
		return nil, statusError(fmt.Errorf("%w: %d > %d", types.ErrCodeTooLong, len([]rune(code)), s.cfg.MaxCodeLength))
	}

	projectID := auth.ProjectIDFromContext(ctx)
	results := s.registry.Match(code)

	scan := &db.Scan{
		ScanID:     types.NewScanID(),
		ProjectID:  projectID,
		Code:       code,
		MatchCount: len(results),
	}

	out := make([]any, 0, len(results))
	for i, r := range results {
		entry := map[string]any{
			"template_id": r.Template.ID,
			"project_id":  string(r.Template.Project),
			"lookup_code": r.LookupCode(),
		}
		embedded, hasEmbedded := r.EmbeddedData()
		if hasEmbedded {
			entry["embedded_data"] = embedded
		}
		if price, ok := r.PriceData(); ok {
			entry["price_data"] = price
		}
		out = append(out, entry)

		if i == 0 {
			scan.TemplateID = sql.NullString{String: r.Template.ID, Valid: true}
			scan.LookupCode = sql.NullString{String: r.LookupCode(), Valid: true}
			scan.EmbeddedData = sql.NullInt64{Int64: int64(embedded), Valid: hasEmbedded}
		}
	}

	metrics.RecordScan(scan.TemplateID.String)

	if err := s.journal.Record(ctx, scan); err != nil {
		log.Error().Err(err).Str("project_id", string(projectID)).Msg("failed to journal scan")
		return nil, statusError(err)
	}

	log.Debug().
		Str("scan_id", string(scan.ScanID)).
		Str("project_id", string(projectID)).
		Int("matches", len(results)).
		Msg("scan matched")

	return newStruct(map[string]any{
		"scan_id": string(scan.ScanID),
		"results": out,
	})
}

// CreateCode renders {template_id, base_code, embed_value} into {code}.
func (s *CodeService) CreateCode(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	templateID, err := stringField(req, "template_id", true)
	if err != nil {
		return nil, err
	}
	baseCode, err := stringField(req, "base_code", false)
	if err != nil {
		return nil, err
	}
	value, err := intField(req, "embed_value")
	if err != nil {
		return nil, err
	}

	code, err := s.registry.CreateCode(templateID, baseCode, value)
	metrics.RecordCreateCode(templateID, err == nil)
	if err != nil {
		return nil, statusError(err)
	}
	return newStruct(map[string]any{"code": code})
}

// ListTemplates returns {templates: [{id, template, expected_length, project_id}]}
// in matching order.
func (s *CodeService) ListTemplates(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	active := s.registry.Templates()
	out := make([]any, 0, len(active))
	for _, t := range active {
		out = append(out, map[string]any{
			"id":              t.ID,
			"template":        t.Source,
			"expected_length": t.ExpectedLength,
			"project_id":      string(t.Project),
		})
	}
	return newStruct(map[string]any{"templates": out})
}

// ListScans returns the caller's recent scans, newest first. Optional {limit},
// clamped to db.MaxScanLimit.
func (s *CodeService) ListScans(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	limit := 0
	if _, ok := req.GetFields()["limit"]; ok {
		n, err := intField(req, "limit")
		if err != nil {
			return nil, err
		}
		limit = min(n, db.MaxScanLimit)
	}

	scans, err := s.journal.List(ctx, auth.ProjectIDFromContext(ctx), limit)
	if err != nil {
		return nil, statusError(err)
	}

	out := make([]any, 0, len(scans))
	for _, sc := range scans {
		entry := map[string]any{
			"scan_id":     string(sc.ScanID),
			"code":        sc.Code,
			"match_count": sc.MatchCount,
			"scanned_at":  sc.ScannedAt.UTC().Format(time.RFC3339Nano),
		}
		if sc.TemplateID.Valid {
			entry["template_id"] = sc.TemplateID.String
			entry["lookup_code"] = sc.LookupCode.String
		}
		if sc.EmbeddedData.Valid {
			entry["embedded_data"] = sc.EmbeddedData.Int64
		}
		out = append(out, entry)
	}
	return newStruct(map[string]any{"scans": out})
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func stringField(req *structpb.Struct, name string, required bool) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		if required {
			return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
		}
		return "", nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
	if required && sv.StringValue == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return sv.StringValue, nil
}

func intField(req *structpb.Struct, name string) (int, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	f := nv.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}
	return int(f), nil
}
