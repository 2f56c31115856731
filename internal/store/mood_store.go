package store

import "context"

type MoodStore struct {
	db DB
}

// MoodEntry is one logged mood, at most one per user per day.
type MoodEntry struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Score     int    `db:"score"`
	Note      string `db:"note"`
	EntryDate string `db:"entry_date"`
	CreatedAt any    `db:"created_at"`
}

func NewMoodStore(db DB) *MoodStore {
	return &MoodStore{db: db}
}

func (s *MoodStore) Insert(ctx context.Context, tx Execer, id, userID string, score int, note, entryDate string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO mood_entries (id, user_id, score, note, entry_date)
		VALUES ($1, $2, $3, $4, $5)
	`, id, userID, score, note, entryDate)
	return err
}

// ExistsForDate reports whether the user already logged a mood on the
// given calendar date. Runs on the surrounding transaction.
func (s *MoodStore) ExistsForDate(ctx context.Context, tx Getter, userID, entryDate string) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM mood_entries WHERE user_id = $1 AND entry_date = $2
	`, userID, entryDate)
	return count > 0, err
}

// LastEntryDate returns the most recent entry date before the given one,
// for consecutive-day streak calculation.
func (s *MoodStore) LastEntryDate(ctx context.Context, tx Getter, userID, beforeDate string) (string, error) {
	var date string
	err := tx.GetContext(ctx, &date, `
		SELECT entry_date::text FROM mood_entries
		WHERE user_id = $1 AND entry_date < $2
		ORDER BY entry_date DESC
		LIMIT 1
	`, userID, beforeDate)
	return date, err
}

func (s *MoodStore) ListByUser(ctx context.Context, userID string, limit int) ([]MoodEntry, error) {
	var rows []MoodEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, score, note, entry_date::text AS entry_date, created_at
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
