package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/database"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// ProjectRepository persists discovery records. The full record travels as an
// opaque JSON content bundle; id and status live in their own columns and are
// authoritative on read.
type ProjectRepository interface {
	// Save upserts a record and returns its persisted form. Records whose id is
	// not a UUID get a storage-assigned one. Rows that already left draft
	// cannot be overwritten and yield ErrConflict.
	Save(ctx context.Context, rec models.DiscoveryRecord) (*models.DiscoveryRecord, error)
	List(ctx context.Context) ([]models.DiscoveryRecord, error)
	Get(ctx context.Context, id string) (*models.DiscoveryRecord, error)
	// UpdateStatus moves a stored record one step forward.
	UpdateStatus(ctx context.Context, id string, status models.RecordStatus) error
}

type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

var _ ProjectRepository = (*projectRepository)(nil)

func (r *projectRepository) Save(ctx context.Context, rec models.DiscoveryRecord) (*models.DiscoveryRecord, error) {
	content, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal record: %w", apperrors.ErrStore, err)
	}

	var idArg any
	if id, err := uuid.Parse(rec.ID); err == nil {
		idArg = id
	}

	query := `
		INSERT INTO discovery_projects (id, status, project_name, ecosystem, content, updated_at)
		VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    project_name = EXCLUDED.project_name,
		    ecosystem = EXCLUDED.ecosystem,
		    content = EXCLUDED.content,
		    updated_at = EXCLUDED.updated_at
		WHERE discovery_projects.status = 'draft'
		RETURNING id, status, created_at`

	var (
		id        uuid.UUID
		status    string
		createdAt time.Time
	)
	err = r.db.QueryRow(ctx, query,
		idArg,
		string(rec.Status),
		rec.ProjectName,
		string(rec.EcosystemPreference),
		content,
	).Scan(&id, &status, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: record %s is no longer a draft: %w", apperrors.ErrStore, rec.ID, apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("%w: failed to save record: %w", apperrors.ErrStore, err)
	}

	saved := rec
	overlay(&saved, id, status, createdAt)
	return &saved, nil
}

func (r *projectRepository) List(ctx context.Context) ([]models.DiscoveryRecord, error) {
	query := `
		SELECT id, status, content, created_at
		FROM discovery_projects
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list records: %w", apperrors.ErrStore, err)
	}
	defer rows.Close()

	records := make([]models.DiscoveryRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating records: %w", apperrors.ErrStore, err)
	}

	return records, nil
}

func (r *projectRepository) Get(ctx context.Context, id string) (*models.DiscoveryRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	query := `
		SELECT id, status, content, created_at
		FROM discovery_projects
		WHERE id = $1`

	rec, err := scanRecord(r.db.QueryRow(ctx, query, uid))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id string, status models.RecordStatus) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperrors.ErrNotFound
	}

	prev, ok := predecessor(status)
	if !ok {
		return fmt.Errorf("cannot move a record to %q: %w", status, apperrors.ErrInvalidTransition)
	}

	query := `
		UPDATE discovery_projects
		SET status = $2,
		    content = jsonb_set(content, '{status}', to_jsonb($2::text)),
		    updated_at = now()
		WHERE id = $1 AND status = $3`

	tag, err := r.db.Exec(ctx, query, uid, string(status), string(prev))
	if err != nil {
		return fmt.Errorf("%w: failed to update record status: %w", apperrors.ErrStore, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM discovery_projects WHERE id = $1)`, uid).Scan(&exists); err != nil {
		return fmt.Errorf("%w: failed to check record: %w", apperrors.ErrStore, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf("record %s is not %q: %w", id, prev, apperrors.ErrInvalidTransition)
}

func scanRecord(row pgx.Row) (*models.DiscoveryRecord, error) {
	var (
		id        uuid.UUID
		status    string
		content   []byte
		createdAt time.Time
	)
	if err := row.Scan(&id, &status, &content, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to scan record: %w", apperrors.ErrStore, err)
	}

	var rec models.DiscoveryRecord
	if err := json.Unmarshal(content, &rec); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal record %s: %w", apperrors.ErrStore, id, err)
	}
	overlay(&rec, id, status, createdAt)
	return &rec, nil
}

// overlay applies the authoritative column values to a decoded record.
func overlay(rec *models.DiscoveryRecord, id uuid.UUID, status string, createdAt time.Time) {
	rec.ID = id.String()
	rec.Status = models.RecordStatus(status)
	if rec.SubmissionDate == nil && rec.Status != models.StatusDraft {
		ts := createdAt.UTC()
		rec.SubmissionDate = &ts
	}
}

func predecessor(status models.RecordStatus) (models.RecordStatus, bool) {
	for _, from := range []models.RecordStatus{models.StatusDraft, models.StatusSubmitted} {
		if from.CanTransitionTo(status) {
			return from, true
		}
	}
	return "", false
}
