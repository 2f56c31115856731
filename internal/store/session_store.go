package store

import "context"

type SessionStore struct {
	db DB
}

// Session is a scheduled appointment between a patient and a professional.
type Session struct {
	ID              string `db:"id"`
	PatientID       string `db:"patient_id"`
	ProfessionalID  string `db:"professional_id"`
	SessionType     string `db:"session_type"`
	DurationMinutes int    `db:"duration_minutes"`
	ScheduledAt     any    `db:"scheduled_at"`
	Status          string `db:"status"`
	PaymentMethod   string `db:"payment_method"`
	PriceMinor      int64  `db:"price_minor"`
	PriceTokens     int64  `db:"price_tokens"`
	CreatedAt       any    `db:"created_at"`
}

type SessionInput struct {
	ID              string
	PatientID       string
	ProfessionalID  string
	SessionType     string
	DurationMinutes int
	ScheduledAt     string
	Status          string
	PaymentMethod   string
	PriceMinor      int64
	PriceTokens     int64
}

func NewSessionStore(db DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, tx Execer, input SessionInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, patient_id, professional_id, session_type, duration_minutes, scheduled_at, status, payment_method, price_minor, price_tokens)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, input.ID, input.PatientID, input.ProfessionalID, input.SessionType, input.DurationMinutes,
		input.ScheduledAt, input.Status, input.PaymentMethod, input.PriceMinor, input.PriceTokens)
	return err
}

func (s *SessionStore) GetByID(ctx context.Context, sessionID string) (Session, error) {
	var row Session
	err := s.db.GetContext(ctx, &row, `
		SELECT id, patient_id, professional_id, session_type, duration_minutes, scheduled_at, status, payment_method, price_minor, price_tokens, created_at
		FROM sessions
		WHERE id = $1
	`, sessionID)
	if err != nil {
		return Session{}, err
	}
	return row, nil
}

// GetForUpdate locks the session row so completion happens exactly once.
func (s *SessionStore) GetForUpdate(ctx context.Context, tx Getter, sessionID string) (Session, error) {
	var row Session
	err := tx.GetContext(ctx, &row, `
		SELECT id, patient_id, professional_id, session_type, duration_minutes, scheduled_at, status, payment_method, price_minor, price_tokens
		FROM sessions
		WHERE id = $1
		FOR UPDATE
	`, sessionID)
	if err != nil {
		return Session{}, err
	}
	return row, nil
}

func (s *SessionStore) UpdateStatus(ctx context.Context, tx Execer, sessionID, status string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE sessions SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, sessionID)
	return err
}

func (s *SessionStore) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]Session, error) {
	var rows []Session
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, patient_id, professional_id, session_type, duration_minutes, scheduled_at, status, payment_method, price_minor, price_tokens, created_at
		FROM sessions
		WHERE patient_id = $1
		ORDER BY scheduled_at DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountCompletedByPatient runs on the surrounding transaction so milestone
// awards see the row being completed.
func (s *SessionStore) CountCompletedByPatient(ctx context.Context, tx Getter, patientID string) (int64, error) {
	var count int64
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM sessions WHERE patient_id = $1 AND status = 'completed'
	`, patientID)
	return count, err
}
