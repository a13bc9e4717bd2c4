// Package service wires schema fetching, SQL generation, plan validation
// and run history into the operations the API and CLI expose.
package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"starspread/internal/domain"
	"starspread/internal/history"
	"starspread/internal/schematree"
	"starspread/internal/sqlgen"
	"starspread/internal/validate"
)

// ExpandRequest describes one wildcard expansion.
type ExpandRequest struct {
	// Table is the three-part name catalog.schema.table.
	Table string `json:"table"`
	// Mode is "reconstruct" (default) or "flatten".
	Mode string `json:"mode,omitempty"`
	// Validate runs an EXPLAIN plan comparison against SELECT *.
	Validate bool `json:"validate,omitempty"`
}

// ExpandResult is the outcome of one expansion.
type ExpandResult struct {
	RunID      string           `json:"run_id,omitempty"`
	Table      string           `json:"table"`
	Mode       string           `json:"mode"`
	Statement  string           `json:"statement"`
	Validation *validate.Result `json:"validation,omitempty"`
}

// ExpandService turns SELECT * over a Unity Catalog table into an explicit
// column projection.
type ExpandService struct {
	fetcher   domain.SchemaFetcher
	validator *validate.Validator // nil disables validation
	store     *history.Store      // nil disables run history
	logger    *slog.Logger
}

// NewExpandService creates the service. validator and store may be nil.
func NewExpandService(fetcher domain.SchemaFetcher, validator *validate.Validator, store *history.Store, logger *slog.Logger) *ExpandService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpandService{
		fetcher:   fetcher,
		validator: validator,
		store:     store,
		logger:    logger,
	}
}

// Expand fetches the table schema, generates the explicit projection, and
// optionally validates it and records the run.
func (s *ExpandService) Expand(ctx context.Context, req ExpandRequest) (*ExpandResult, error) {
	ref, err := domain.ParseTableRef(req.Table)
	if err != nil {
		return nil, err
	}

	mode, err := sqlgen.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	columns, err := s.fetcher.TableColumns(ctx, ref)
	if err != nil {
		return nil, err
	}

	schema, err := schematree.Build(ref, columns)
	if err != nil {
		return nil, err
	}

	statement, err := sqlgen.SelectStatement(schema, mode)
	if err != nil {
		return nil, err
	}

	result := &ExpandResult{
		Table:     ref.FullName(),
		Mode:      mode.String(),
		Statement: statement,
	}

	if req.Validate {
		if s.validator == nil {
			return nil, domain.ErrValidation("validation requested but no plan executor is configured")
		}
		starQuery := "SELECT *\nFROM " + sqlgen.QualifiedTableName(ref)
		validation, err := s.validator.ValidateEquivalence(ctx, starQuery, statement, ref.Catalog, ref.Schema)
		if err != nil {
			return nil, err
		}
		result.Validation = validation
	}

	s.logger.Info("expanded wildcard",
		"table", ref.FullName(),
		"mode", mode.String(),
		"columns", len(columns),
		"validated", req.Validate,
	)

	if s.store != nil {
		run := &history.Run{
			TableName: ref.FullName(),
			Mode:      mode.String(),
			Statement: statement,
			Validated: req.Validate,
		}
		if result.Validation != nil {
			equivalent := result.Validation.Equivalent
			run.Equivalent = &equivalent
		}
		if err := s.store.Save(ctx, run); err != nil {
			// History is best effort; the generated SQL is still good.
			s.logger.Warn("record run", "error", err)
		} else {
			result.RunID = run.ID
		}
	}

	return result, nil
}

// ExpandMany expands several tables concurrently. concurrency <= 0 means 4.
// The first error cancels the remaining work; results keep request order.
func (s *ExpandService) ExpandMany(ctx context.Context, reqs []ExpandRequest, concurrency int) ([]*ExpandResult, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]*ExpandResult, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			result, err := s.Expand(ctx, req)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Runs lists the most recent recorded runs.
func (s *ExpandService) Runs(ctx context.Context, limit int) ([]history.Run, error) {
	if s.store == nil {
		return nil, domain.ErrValidation("run history is not configured")
	}
	return s.store.List(ctx, limit)
}

// Run returns a single recorded run by ID.
func (s *ExpandService) Run(ctx context.Context, id string) (*history.Run, error) {
	if s.store == nil {
		return nil, domain.ErrValidation("run history is not configured")
	}
	return s.store.Get(ctx, id)
}
