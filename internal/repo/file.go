package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/JayaSurya08-dev/Nimbus/internal/models"
)

type FileRepo struct {
	DB *gorm.DB
}

func NewFileRepo(db *gorm.DB) *FileRepo { return &FileRepo{DB: db} }

func (r *FileRepo) FindByID(ctx context.Context, id, ownerID uint) (*models.File, error) {
	var f models.File
	err := r.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FileRepo) FindByOwner(ctx context.Context, ownerID uint) ([]models.File, error) {
	files := make([]models.File, 0)
	err := r.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&files).Error
	return files, err
}

func (r *FileRepo) Create(ctx context.Context, f *models.File) error {
	return r.DB.WithContext(ctx).Create(f).Error
}

func (r *FileRepo) Delete(ctx context.Context, id, ownerID uint) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.File{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *FileRepo) SearchByName(ctx context.Context, ownerID uint, query string, from, size int) (int64, []models.File, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	q := r.DB.WithContext(ctx).Model(&models.File{}).
		Where("owner_id = ?", ownerID).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	files := make([]models.File, 0)
	err := q.Order("uploaded_at DESC").Order("id DESC").
		Offset(from).Limit(size).
		Find(&files).Error
	return total, files, err
}
