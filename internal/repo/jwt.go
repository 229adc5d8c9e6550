package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JayaSurya08-dev/Nimbus/internal/models"
)

type TokenRepo struct {
	DB *gorm.DB
}

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Revoke adds t to the denylist. Revoking the same jti twice is a no-op.
func (r *TokenRepo) Revoke(ctx context.Context, t *models.RevokedToken) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(t).Error
}

func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpired drops entries whose token would be rejected on expiry alone.
func (r *TokenRepo) PurgeExpired(ctx context.Context, now int64) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
