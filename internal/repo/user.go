package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/JayaSurya08-dev/Nimbus/internal/models"
)

type UserRepo struct {
	DB *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).Where("username = ?", u.Username).FirstOrCreate(u)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExist
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByEmail returns the oldest account carrying email. Emails are not unique.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindAllByEmail lists every account carrying email, oldest first.
func (r *UserRepo) FindAllByEmail(ctx context.Context, email string) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

// FindOrCreateByEmail returns the account for u.Email, creating u when none exists.
// The bool reports whether a new row was inserted. ErrUserAlreadyExist means
// u.Username belongs to an account registered under another email.
func (r *UserRepo) FindOrCreateByEmail(ctx context.Context, u *models.User) (*models.User, bool, error) {
	existing, err := r.FindByEmail(ctx, u.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	if err := r.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where(query, args...).Order("id").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
