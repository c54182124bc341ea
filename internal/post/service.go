package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pakodev28/yatube-project/internal/db"
	"github.com/pakodev28/yatube-project/internal/stream"
)

const pageSize = 10

var (
	ErrNotFound      = errors.New("post not found")
	ErrGroupNotFound = errors.New("group not found")
)

type Service struct {
	db  db.Querier
	hub *stream.Hub
}

func NewService(db db.Querier, hub *stream.Hub) *Service {
	return &Service{db: db, hub: hub}
}

const postColumns = `p.id, p.text, COALESCE(p.image,''), p.pub_date,
		       u.id, u.username, COALESCE(u.full_name,''),
		       COALESCE(g.id,''), COALESCE(g.slug,''), COALESCE(g.title,'')`

const postFrom = `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN groups g ON g.id = p.group_id`

// filter selects which feed a paginated query serves; the four listings
// differ only in this predicate.
type filter struct {
	where string
	args  []any
}

func filterAll() filter {
	return filter{}
}

func filterGroup(slug string) filter {
	return filter{where: "g.slug = $1", args: []any{slug}}
}

func filterAuthor(username string) filter {
	return filter{where: "u.username = $1", args: []any{username}}
}

func filterFollowed(userID string) filter {
	return filter{
		where: "p.author_id IN (SELECT author_id FROM follows WHERE user_id = $1)",
		args:  []any{userID},
	}
}

// feedPage runs one paginated reverse-chronological post query. Page
// numbers out of range are clamped to the nearest valid page; an empty
// feed still has a single empty page.
func (s *Service) feedPage(ctx context.Context, f filter, pageNum int) (Page, error) {
	countSQL := `SELECT COUNT(*)` + postFrom
	selectSQL := `SELECT ` + postColumns + postFrom
	if f.where != "" {
		countSQL += " WHERE " + f.where
		selectSQL += " WHERE " + f.where
	}

	var total int
	if err := s.db.QueryRow(ctx, countSQL, f.args...).Scan(&total); err != nil {
		return Page{}, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if pageNum < 1 {
		pageNum = 1
	}
	if pageNum > totalPages {
		pageNum = totalPages
	}

	n := len(f.args)
	selectSQL += fmt.Sprintf(" ORDER BY p.pub_date DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	args := append(append([]any{}, f.args...), pageSize, (pageNum-1)*pageSize)

	rows, err := s.db.Query(ctx, selectSQL, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	posts := make([]Post, 0, pageSize)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return Page{}, err
		}
		posts = append(posts, p)
	}

	return Page{
		Posts:      posts,
		Number:     pageNum,
		TotalPages: totalPages,
		TotalCount: total,
	}, nil
}

func (s *Service) Create(ctx context.Context, author Author, form PostForm, imagePath string) (Post, error) {
	groupRef, err := s.resolveGroup(ctx, form.GroupID)
	if err != nil {
		return Post{}, err
	}

	p := Post{
		ID:     uuid.NewString(),
		Text:   form.Text,
		Image:  imagePath,
		Author: author,
		Group:  groupRef,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, author_id, text, group_id, image)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING pub_date
	`, p.ID, author.ID, p.Text, nullable(form.GroupID), nullable(imagePath))
	if err := row.Scan(&p.PubDate); err != nil {
		return Post{}, err
	}

	s.broadcast(p)
	return p, nil
}

func (s *Service) ByPath(ctx context.Context, username, postID string) (Post, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+postColumns+postFrom+`
		WHERE p.id = $1 AND u.username = $2
	`, postID, username)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	return p, nil
}

// Detail returns the post together with its author's total post count and
// comments, oldest first.
func (s *Service) Detail(ctx context.Context, username, postID string) (Post, int, []Comment, error) {
	p, err := s.ByPath(ctx, username, postID)
	if err != nil {
		return Post{}, 0, nil, err
	}

	var postCount int
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM posts WHERE author_id = $1
	`, p.Author.ID).Scan(&postCount); err != nil {
		return Post{}, 0, nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.post_id, c.text, c.created, u.id, u.username, COALESCE(u.full_name,'')
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created
	`, p.ID)
	if err != nil {
		return Post{}, 0, nil, err
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.Text, &cm.Created, &cm.Author.ID, &cm.Author.Username, &cm.Author.FullName); err != nil {
			return Post{}, 0, nil, err
		}
		comments = append(comments, cm)
	}
	return p, postCount, comments, nil
}

// Update rewrites text, group and image in place. The publication time is
// never touched.
func (s *Service) Update(ctx context.Context, p Post, form PostForm, imagePath string) (Post, error) {
	groupRef, err := s.resolveGroup(ctx, form.GroupID)
	if err != nil {
		return Post{}, err
	}

	p.Text = form.Text
	p.Group = groupRef
	if imagePath != "" {
		p.Image = imagePath
	}

	_, err = s.db.Exec(ctx, `
		UPDATE posts SET text=$2, group_id=$3, image=$4 WHERE id=$1
	`, p.ID, p.Text, nullable(form.GroupID), nullable(p.Image))
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *Service) AddComment(ctx context.Context, author Author, username, postID string, form CommentForm) (Comment, error) {
	var targetID string
	err := s.db.QueryRow(ctx, `
		SELECT p.id FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1 AND u.username = $2
	`, postID, username).Scan(&targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}

	cm := Comment{
		ID:     uuid.NewString(),
		PostID: targetID,
		Text:   form.Text,
		Author: author,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO comments (id, post_id, author_id, text)
		VALUES ($1,$2,$3,$4)
		RETURNING created
	`, cm.ID, cm.PostID, author.ID, cm.Text)
	if err := row.Scan(&cm.Created); err != nil {
		return Comment{}, err
	}
	return cm, nil
}

func (s *Service) AuthorByUsername(ctx context.Context, username string) (Author, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, COALESCE(full_name,'') FROM users WHERE username = $1
	`, username)
	var a Author
	if err := row.Scan(&a.ID, &a.Username, &a.FullName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Author{}, ErrNotFound
		}
		return Author{}, err
	}
	return a, nil
}

func (s *Service) resolveGroup(ctx context.Context, groupID string) (*GroupRef, error) {
	if groupID == "" {
		return nil, nil
	}
	row := s.db.QueryRow(ctx, `
		SELECT id, slug, title FROM groups WHERE id = $1
	`, groupID)
	var g GroupRef
	if err := row.Scan(&g.ID, &g.Slug, &g.Title); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (s *Service) broadcast(p Post) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	s.hub.Broadcast("all", payload)
	if p.Group != nil {
		s.hub.Broadcast(p.Group.Slug, payload)
	}
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	var groupID, groupSlug, groupTitle string
	err := row.Scan(&p.ID, &p.Text, &p.Image, &p.PubDate,
		&p.Author.ID, &p.Author.Username, &p.Author.FullName,
		&groupID, &groupSlug, &groupTitle)
	if err != nil {
		return Post{}, err
	}
	if groupID != "" {
		p.Group = &GroupRef{ID: groupID, Slug: groupSlug, Title: groupTitle}
	}
	return p, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
