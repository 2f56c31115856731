package store

import "context"

type RewardStore struct {
	db DB
}

// Reward is a catalog entry redeemable for tokens. The catalog is seeded
// by migration and read-only at runtime.
type Reward struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Cost        int64  `db:"cost"`
	Type        string `db:"type"`
	Available   bool   `db:"available"`
}

func NewRewardStore(db DB) *RewardStore {
	return &RewardStore{db: db}
}

func (s *RewardStore) List(ctx context.Context) ([]Reward, error) {
	var rows []Reward
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, cost, type, available
		FROM rewards
		ORDER BY cost
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *RewardStore) GetByID(ctx context.Context, rewardID string) (Reward, error) {
	var row Reward
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, description, cost, type, available
		FROM rewards
		WHERE id = $1
	`, rewardID)
	if err != nil {
		return Reward{}, err
	}
	return row, nil
}

func (s *RewardStore) InsertRedemption(ctx context.Context, tx Execer, id, userID, rewardID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO reward_redemptions (id, user_id, reward_id)
		VALUES ($1, $2, $3)
	`, id, userID, rewardID)
	return err
}
