package group

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pakodev28/yatube-project/internal/db"
)

var ErrNotFound = errors.New("group not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Group, error) {
	if req.Title == "" || req.Slug == "" {
		return Group{}, errors.New("title and slug required")
	}

	g := Group{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO groups (id, title, slug, description)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, g.ID, g.Title, g.Slug, g.Description)
	if err := row.Scan(&g.CreatedAt); err != nil {
		return Group{}, err
	}
	return g, nil
}

func (s *Service) BySlug(ctx context.Context, slug string) (Group, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, title, slug, COALESCE(description,''), created_at
		FROM groups WHERE slug=$1
	`, slug)
	var g Group
	if err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description, &g.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Group{}, ErrNotFound
		}
		return Group{}, err
	}
	return g, nil
}

// IsAdmin reports whether the user carries the administrator flag. Group
// creation is an administrative operation, not part of the posting flow.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var isAdmin bool
	err := s.db.QueryRow(ctx, `SELECT is_admin FROM users WHERE id=$1`, userID).Scan(&isAdmin)
	if err != nil {
		return false, err
	}
	return isAdmin, nil
}
