package store

import (
	"context"
	"database/sql"
	"time"
)

type ProfessionalStore struct {
	db DB
}

// Professional is a listed mental health professional patients can book.
// SessionRateMinor is the cents price of a 50-minute video session;
// BaseTokenRate is the equivalent token price.
type Professional struct {
	ID               string    `db:"id"`
	UserID           *string   `db:"user_id"`
	Name             string    `db:"name"`
	Title            string    `db:"title"`
	Specialties      string    `db:"specialties"`
	SessionRateMinor int64     `db:"session_rate_minor"`
	BaseTokenRate    int64     `db:"base_token_rate"`
	CreatedAt        time.Time `db:"created_at"`
}

func NewProfessionalStore(db DB) *ProfessionalStore {
	return &ProfessionalStore{db: db}
}

func (s *ProfessionalStore) List(ctx context.Context) ([]Professional, error) {
	var rows []Professional
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, name, title, specialties, session_rate_minor, base_token_rate, created_at
		FROM professionals
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LinkUser binds a directory entry to the user account that acts for
// it. Sessions can only be completed through a linked account.
func (s *ProfessionalStore) LinkUser(ctx context.Context, tx Execer, professionalID, userID string) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE professionals
		SET user_id = $1
		WHERE id = $2
	`, userID, professionalID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *ProfessionalStore) GetByID(ctx context.Context, professionalID string) (Professional, error) {
	var row Professional
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, name, title, specialties, session_rate_minor, base_token_rate, created_at
		FROM professionals
		WHERE id = $1
	`, professionalID)
	if err != nil {
		return Professional{}, err
	}
	return row, nil
}
