package storage

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/pakodev28/yatube-project/internal/db"
)

// Service writes uploaded post images below the media root and keeps a
// record of every stored object. Posts reference images by the returned
// relative path under posts/.
type Service struct {
	db   db.Querier
	root string
}

func NewService(db db.Querier, root string) *Service {
	return &Service{db: db, root: root}
}

func (s *Service) SaveImage(ctx context.Context, userID string, file *multipart.FileHeader) (string, error) {
	name := uuid.NewString() + filepath.Ext(file.Filename)
	rel := path.Join("posts", name)

	full := filepath.Join(s.root, "posts", name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO storage_objects (id, user_id, path, kind)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, rel, "image")
	if err != nil {
		return "", err
	}
	return rel, nil
}
