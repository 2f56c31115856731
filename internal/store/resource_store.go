package store

import (
	"context"
	"time"
)

type ResourceStore struct {
	db DB
}

// Resource is a self-help article, meditation, or exercise from the
// seeded content library.
type Resource struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Kind        string    `db:"kind"`
	Premium     bool      `db:"premium"`
	CreatedAt   time.Time `db:"created_at"`
}

// ResourceProgress tracks which award steps a user has already earned for
// a resource, so read/complete each pay out at most once.
type ResourceProgress struct {
	UserID      string     `db:"user_id"`
	ResourceID  string     `db:"resource_id"`
	ReadAt      *time.Time `db:"read_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func NewResourceStore(db DB) *ResourceStore {
	return &ResourceStore{db: db}
}

func (s *ResourceStore) List(ctx context.Context) ([]Resource, error) {
	var rows []Resource
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, title, description, kind, premium, created_at
		FROM resources
		ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ResourceStore) GetByID(ctx context.Context, resourceID string) (Resource, error) {
	var row Resource
	err := s.db.GetContext(ctx, &row, `
		SELECT id, title, description, kind, premium, created_at
		FROM resources
		WHERE id = $1
	`, resourceID)
	if err != nil {
		return Resource{}, err
	}
	return row, nil
}

// GetProgressForUpdate locks the progress row when it exists. A missing
// row means neither step has been awarded yet.
func (s *ResourceStore) GetProgressForUpdate(ctx context.Context, tx Getter, userID, resourceID string) (ResourceProgress, error) {
	var row ResourceProgress
	err := tx.GetContext(ctx, &row, `
		SELECT user_id, resource_id, read_at, completed_at
		FROM resource_progress
		WHERE user_id = $1 AND resource_id = $2
		FOR UPDATE
	`, userID, resourceID)
	if err != nil {
		return ResourceProgress{}, err
	}
	return row, nil
}

func (s *ResourceStore) MarkRead(ctx context.Context, tx Execer, userID, resourceID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO resource_progress (user_id, resource_id, read_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, resource_id) DO UPDATE SET read_at = COALESCE(resource_progress.read_at, NOW())
	`, userID, resourceID)
	return err
}

func (s *ResourceStore) MarkCompleted(ctx context.Context, tx Execer, userID, resourceID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO resource_progress (user_id, resource_id, read_at, completed_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id, resource_id) DO UPDATE SET
			read_at = COALESCE(resource_progress.read_at, NOW()),
			completed_at = COALESCE(resource_progress.completed_at, NOW())
	`, userID, resourceID)
	return err
}

// CountCompleted runs on the surrounding transaction for streak updates.
func (s *ResourceStore) CountCompleted(ctx context.Context, tx Getter, userID string) (int64, error) {
	var count int64
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM resource_progress WHERE user_id = $1 AND completed_at IS NOT NULL
	`, userID)
	return count, err
}
