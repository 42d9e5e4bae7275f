package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dani-Bcn/tareas-de-casa/internal/model"
)

var (
	// ErrAlreadyClaimed is returned by Claim when the reward was claimed
	// before; claims are one-way.
	ErrAlreadyClaimed = errors.New("reward already claimed")
	// ErrInsufficientPoints is returned by Claim when the child's balance
	// is below the reward's cost.
	ErrInsufficientPoints = errors.New("insufficient points")
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var claimed int

	err := scanner.Scan(&r.ID, &r.Title, &r.Description, &r.Cost, &claimed, &r.ChildID, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	r.Claimed = claimed != 0
	return &r, nil
}

const rewardCols = `id, title, description, cost, claimed, child_id, created_at`

func (s *RewardStore) Create(title, description string, cost int, childID int64) (*model.Reward, error) {
	result, err := s.db.Exec(
		`INSERT INTO rewards (title, description, cost, child_id) VALUES (?, ?, ?, ?)`,
		title, description, cost, childID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetWithChild(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// GetWithChild returns the reward joined with its child's {id, name}.
func (s *RewardStore) GetWithChild(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(
		`SELECT r.id, r.title, r.description, r.cost, r.claimed, r.child_id, r.created_at, c.name
		 FROM rewards r JOIN users c ON c.id = r.child_id
		 WHERE r.id = ?`,
		id,
	)

	var r model.Reward
	var claimed int
	var childName string
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Cost, &claimed, &r.ChildID, &r.CreatedAt, &childName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward with child: %w", err)
	}
	r.Claimed = claimed != 0
	r.Child = &model.UserRef{ID: r.ChildID, Name: childName}
	return &r, nil
}

// ListByParent returns rewards for all of the parent's children, newest
// first, each joined with the child's {id, name}.
func (s *RewardStore) ListByParent(parentID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.title, r.description, r.cost, r.claimed, r.child_id, r.created_at, c.name
		 FROM rewards r JOIN users c ON c.id = r.child_id
		 WHERE c.parent_id = ?
		 ORDER BY r.created_at DESC, r.id DESC`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rewards by parent: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		var r model.Reward
		var claimed int
		var childName string
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Cost, &claimed, &r.ChildID, &r.CreatedAt, &childName); err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		r.Claimed = claimed != 0
		r.Child = &model.UserRef{ID: r.ChildID, Name: childName}
		rewards = append(rewards, r)
	}
	return rewards, rows.Err()
}

// ListByChild returns the child's own rewards, newest first.
func (s *RewardStore) ListByChild(childID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM rewards WHERE child_id = ? ORDER BY created_at DESC, id DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rewards by child: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

// Claim marks the reward claimed and deducts its cost from the child, all
// in one transaction. Both updates are conditional so concurrent claims
// cannot double-spend: the claimed flip requires claimed = 0, the point
// deduction requires points >= cost.
func (s *RewardStore) Claim(id int64) (*model.Reward, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var cost int
	var childID int64
	err = tx.QueryRow(`SELECT cost, child_id FROM rewards WHERE id = ?`, id).Scan(&cost, &childID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward for claim: %w", err)
	}

	result, err := tx.Exec(`UPDATE rewards SET claimed = 1 WHERE id = ? AND claimed = 0`, id)
	if err != nil {
		return nil, fmt.Errorf("mark claimed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrAlreadyClaimed
	}

	result, err = tx.Exec(
		`UPDATE users SET points = points - ? WHERE id = ? AND points >= ?`,
		cost, childID, cost,
	)
	if err != nil {
		return nil, fmt.Errorf("deduct points: %w", err)
	}
	n, err = result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrInsufficientPoints
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM rewards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	return nil
}
