package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/template-doctor/template-doctor/internal/core"
)

// Store defines the interface for all database operations.
type Store interface {
	SaveValidation(ctx context.Context, v *core.Validation) error
	GetLatestValidation(ctx context.Context, templateURL, validationType string) (*core.Validation, error)
	ListRecentValidations(ctx context.Context, limit int) ([]core.Validation, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// SaveValidation inserts a new validation record into the database.
func (s *postgresStore) SaveValidation(ctx context.Context, v *core.Validation) error {
	query := `INSERT INTO validations (template_url, type, run_id, conclusion, compliant, score, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		v.TemplateURL, v.Type, v.RunID, v.Conclusion, v.Compliant, v.Score, v.Report, time.Now())
	return err
}

// GetLatestValidation retrieves the most recent validation of the given type
// for a template.
func (s *postgresStore) GetLatestValidation(ctx context.Context, templateURL, validationType string) (*core.Validation, error) {
	query := `
		SELECT id, template_url, type, run_id, conclusion, compliant, score, report, created_at
		FROM validations
		WHERE template_url = $1 AND type = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var v core.Validation
	err := s.db.GetContext(ctx, &v, query, templateURL, validationType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no validation found for template %s (type %s)", templateURL, validationType)
		}
		return nil, err
	}
	return &v, nil
}

// ListRecentValidations returns the newest validation records across all
// templates, capped at limit.
func (s *postgresStore) ListRecentValidations(ctx context.Context, limit int) ([]core.Validation, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, template_url, type, run_id, conclusion, compliant, score, report, created_at
		FROM validations
		ORDER BY created_at DESC
		LIMIT $1`

	var out []core.Validation
	if err := s.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, err
	}
	return out, nil
}
