package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"DevProjectScanner/internal/domain"
	"DevProjectScanner/internal/ports"
)

// PostgresRepository keeps scan history: one row per completed run and
// one row per scanned document, so a rescan can skip documents already
// covered.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RunRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// AlreadyScanned returns a map with document names present in history.
func (r *PostgresRepository) AlreadyScanned(ctx context.Context, names []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if r.db == nil || len(names) == 0 {
		return result, nil
	}

	query, args, err := r.builder.
		Select("document_name").
		From("scanned_documents").
		Where(sq.Eq{"document_name": names}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scanned query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scanned: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		result[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveScanned records the documents covered by the current run.
func (r *PostgresRepository) SaveScanned(ctx context.Context, names []string) error {
	if r.db == nil || len(names) == 0 {
		return nil
	}

	insert := r.builder.
		Insert("scanned_documents").
		Columns("document_name").
		Suffix("ON CONFLICT (document_name) DO NOTHING")
	for _, name := range names {
		insert = insert.Values(name)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build scanned insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert scanned: %w", err)
	}
	return nil
}

// SaveRun records the run summary for audit.
func (r *PostgresRepository) SaveRun(ctx context.Context, run domain.RunSummary) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("scan_runs").
		Columns("started_at", "documents", "failed_documents", "entities", "entities_matched", "report_path").
		Values(run.StartedAt, run.Documents, run.FailedDocuments, run.Entities, run.EntitiesMatched, run.ReportPath).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}
