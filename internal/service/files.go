package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JayaSurya08-dev/Nimbus/internal/logging"
	"github.com/JayaSurya08-dev/Nimbus/internal/models"
	"github.com/JayaSurya08-dev/Nimbus/internal/repo"
	"github.com/JayaSurya08-dev/Nimbus/internal/util"
)

// FileIndex is an optional full-text index over file names.
type FileIndex interface {
	IndexFile(ctx context.Context, f *models.File) error
	RemoveFile(ctx context.Context, id uint) error
	Search(ctx context.Context, ownerID uint, query string, from, size int) (int64, []models.File, error)
}

type FileService struct {
	Files    repo.FileRepository
	Store    ObjectStore
	Index    FileIndex
	Producer EventPublisher

	// PublicBucket makes listings use the stored public URL instead of signing each entry.
	PublicBucket bool
	SignedURLTTL time.Duration

	Now func() time.Time
}

type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

type SearchResult struct {
	Total int64         `json:"total"`
	Files []models.File `json:"files"`
}

func (s *FileService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// StoragePath builds "{user_id}/{random_id}_{filename}".
func StoragePath(ownerID uint, name string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%d/%s_%s", ownerID, id, name)
}

// CleanFileName reduces a client supplied name to its last path element.
func CleanFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// Upload writes the object first and records it only after the write succeeded.
func (s *FileService) Upload(ctx context.Context, ownerID uint, up Upload) (*models.File, error) {
	l := logging.FromContext(ctx).With("svc", "files.upload", "user_id", ownerID)

	name := CleanFileName(up.Name)
	if name == "" || up.Body == nil || up.Size <= 0 {
		return nil, fmt.Errorf("%w: a non-empty file is required", ErrValidation)
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	receipt, err := s.Store.Put(ctx, Object{
		Path:        StoragePath(ownerID, name),
		Body:        up.Body,
		Size:        up.Size,
		ContentType: contentType,
	})
	if err != nil {
		l.Error("upload_failed", "status", 502, "reason", "storage put", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	rec := &models.File{
		OwnerID:     ownerID,
		Name:        name,
		Size:        up.Size,
		ContentType: contentType,
		StoragePath: receipt.Path,
		URL:         s.Store.PublicURL(receipt.Path),
		UploadedAt:  s.now().UTC(),
	}
	if err := s.Files.Create(ctx, rec); err != nil {
		l.Error("upload_failed", "status", 500, "reason", "record create", "path", receipt.Path, "error", err)
		if !s.Store.Delete(ctx, receipt.Path) {
			l.Warn("orphan_object", "path", receipt.Path)
		}
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.IndexFile(ctx, rec); err != nil {
			l.Warn("index_failed", "file_id", rec.ID, "error", err)
		}
	}
	publish(ctx, s.Producer, TopicFileEvents, subject(ownerID), map[string]any{
		"type":    "file_uploaded",
		"user_id": ownerID,
		"file_id": rec.ID,
		"size":    rec.Size,
	})

	rec.URL = s.resolveURL(ctx, rec)
	l.Info("file_uploaded", "file_id", rec.ID, "size", rec.Size)
	return rec, nil
}

func (s *FileService) List(ctx context.Context, ownerID uint) ([]models.File, error) {
	files, err := s.Files.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].URL = s.resolveURL(ctx, &files[i])
	}
	return files, nil
}

func (s *FileService) Download(ctx context.Context, ownerID, fileID uint) (string, error) {
	f, err := s.find(ctx, ownerID, fileID)
	if err != nil {
		return "", err
	}
	url := s.Store.SignedURL(ctx, f.StoragePath, s.SignedURLTTL)
	if url == "" {
		logging.FromContext(ctx).Error("download_failed", "status", 502, "file_id", f.ID, "reason", "cannot sign url")
		return "", ErrUpstream
	}
	return url, nil
}

// Delete removes the record even when the remote delete fails.
func (s *FileService) Delete(ctx context.Context, ownerID, fileID uint) error {
	l := logging.FromContext(ctx).With("svc", "files.delete", "user_id", ownerID)

	f, err := s.find(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	if !s.Store.Delete(ctx, f.StoragePath) {
		l.Warn("remote_delete_failed", "file_id", f.ID, "path", f.StoragePath)
	}
	if err := s.Files.Delete(ctx, f.ID, ownerID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		l.Error("delete_failed", "status", 500, "file_id", f.ID, "error", err)
		return err
	}

	if s.Index != nil {
		if err := s.Index.RemoveFile(ctx, f.ID); err != nil {
			l.Warn("unindex_failed", "file_id", f.ID, "error", err)
		}
	}
	publish(ctx, s.Producer, TopicFileEvents, subject(ownerID), map[string]any{
		"type":    "file_deleted",
		"user_id": ownerID,
		"file_id": f.ID,
	})
	l.Info("file_deleted", "file_id", f.ID)
	return nil
}

func (s *FileService) Search(ctx context.Context, ownerID uint, query string, page, size int) (*SearchResult, error) {
	l := logging.FromContext(ctx).With("svc", "files.search", "user_id", ownerID)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: q is required", ErrValidation)
	}
	from, limit := util.Calculate(page, size)

	var (
		total int64
		files []models.File
		err   error
	)
	if s.Index != nil {
		total, files, err = s.Index.Search(ctx, ownerID, query, from, limit)
		if err != nil {
			l.Warn("index_search_failed", "error", err)
		}
	}
	if s.Index == nil || err != nil {
		total, files, err = s.Files.SearchByName(ctx, ownerID, query, from, limit)
		if err != nil {
			return nil, err
		}
	}

	for i := range files {
		files[i].URL = s.resolveURL(ctx, &files[i])
	}
	return &SearchResult{Total: total, Files: files}, nil
}

func (s *FileService) find(ctx context.Context, ownerID, fileID uint) (*models.File, error) {
	f, err := s.Files.FindByID(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FileService) resolveURL(ctx context.Context, f *models.File) string {
	if s.PublicBucket && f.URL != "" {
		return f.URL
	}
	return s.Store.SignedURL(ctx, f.StoragePath, s.SignedURLTTL)
}
