package social

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/pakodev28/yatube-project/internal/db"
)

var (
	ErrNotFound    = errors.New("follow not found")
	ErrUnknownUser = errors.New("user not found")
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) AuthorIDByUsername(ctx context.Context, username string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE username=$1`, username).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUnknownUser
		}
		return "", err
	}
	return id, nil
}

// Follow inserts the edge. The unique (user_id, author_id) pair plus
// ON CONFLICT makes concurrent duplicate requests collapse to one edge.
func (s *Service) Follow(ctx context.Context, edge Follow) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO follows (user_id, author_id)
		VALUES ($1,$2)
		ON CONFLICT (user_id, author_id) DO NOTHING
	`, edge.UserID, edge.AuthorID)
	return err
}

func (s *Service) Unfollow(ctx context.Context, edge Follow) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM follows WHERE user_id=$1 AND author_id=$2
	`, edge.UserID, edge.AuthorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	var following bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM follows WHERE user_id=$1 AND author_id=$2)
	`, userID, authorID).Scan(&following)
	if err != nil {
		return false, err
	}
	return following, nil
}
