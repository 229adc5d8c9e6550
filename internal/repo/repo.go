package repo

import (
	"context"
	"errors"

	"github.com/JayaSurya08-dev/Nimbus/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrUserAlreadyExist = errors.New("user already exist")
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAllByEmail(ctx context.Context, email string) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindOrCreateByEmail(ctx context.Context, u *models.User) (*models.User, bool, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

type DenylistRepository interface {
	Revoke(ctx context.Context, t *models.RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context, now int64) (int64, error)
}

// FileRepository never looks a file up without its owner.
type FileRepository interface {
	FindByID(ctx context.Context, id, ownerID uint) (*models.File, error)
	FindByOwner(ctx context.Context, ownerID uint) ([]models.File, error)
	Create(ctx context.Context, f *models.File) error
	Delete(ctx context.Context, id, ownerID uint) error
	SearchByName(ctx context.Context, ownerID uint, query string, from, size int) (int64, []models.File, error)
}
