package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/cache"
	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
)

type galleryRepository struct {
	db    *gorm.DB
	cache *cache.CacheManager
}

func NewGalleryRepository(db *gorm.DB, cacheManager *cache.CacheManager) repositories.GalleryRepository {
	return &galleryRepository{db: db, cache: cacheManager}
}

func (r *galleryRepository) Create(ctx context.Context, tx *gorm.DB, item *models.GalleryItem) error {
	if err := pickDB(r.db, tx).WithContext(ctx).Create(item).Error; err != nil {
		return handleDBError(err, "create gallery item")
	}
	if !inTx(tx) {
		r.InvalidateCache(ctx)
	}
	return nil
}

func (r *galleryRepository) GetByDescription(ctx context.Context, tx *gorm.DB, description string) (*models.GalleryItem, error) {
	var item models.GalleryItem
	if err := pickDB(r.db, tx).WithContext(ctx).Where("description = ?", description).First(&item).Error; err != nil {
		return nil, handleDBError(err, "get gallery item")
	}
	return &item, nil
}

func (r *galleryRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.GalleryItem, error) {
	var items []*models.GalleryItem
	err := r.cache.Content.GetOrLoad(ctx, "gallery:all", &items, func() (interface{}, error) {
		var rows []*models.GalleryItem
		err := pickDB(r.db, tx).WithContext(ctx).
			Order("created_at DESC").Order("id DESC").
			Find(&rows).Error
		if err != nil {
			return nil, handleDBError(err, "list gallery items")
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *galleryRepository) DeleteByDescription(ctx context.Context, tx *gorm.DB, description string) (bool, error) {
	result := pickDB(r.db, tx).WithContext(ctx).
		Where("description = ?", description).
		Delete(&models.GalleryItem{})
	if result.Error != nil {
		return false, handleDBError(result.Error, "delete gallery item")
	}
	if result.RowsAffected > 0 && !inTx(tx) {
		r.InvalidateCache(ctx)
	}
	return result.RowsAffected > 0, nil
}

func (r *galleryRepository) InvalidateCache(ctx context.Context) {
	cache.InvalidateGalleryCache(ctx, r.cache)
}

type newsRepository struct {
	db    *gorm.DB
	cache *cache.CacheManager
}

func NewNewsRepository(db *gorm.DB, cacheManager *cache.CacheManager) repositories.NewsRepository {
	return &newsRepository{db: db, cache: cacheManager}
}

func (r *newsRepository) Create(ctx context.Context, tx *gorm.DB, item *models.NewsItem) error {
	if err := pickDB(r.db, tx).WithContext(ctx).Create(item).Error; err != nil {
		return handleDBError(err, "create news item")
	}
	if !inTx(tx) {
		r.InvalidateCache(ctx)
	}
	return nil
}

func (r *newsRepository) GetByTitle(ctx context.Context, tx *gorm.DB, title string) (*models.NewsItem, error) {
	var item models.NewsItem
	if err := pickDB(r.db, tx).WithContext(ctx).Where("title = ?", title).First(&item).Error; err != nil {
		return nil, handleDBError(err, "get news item")
	}
	return &item, nil
}

func (r *newsRepository) Update(ctx context.Context, tx *gorm.DB, item *models.NewsItem) error {
	if err := pickDB(r.db, tx).WithContext(ctx).Save(item).Error; err != nil {
		return handleDBError(err, "update news item")
	}
	if !inTx(tx) {
		r.InvalidateCache(ctx)
	}
	return nil
}

func (r *newsRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.NewsItem, error) {
	var items []*models.NewsItem
	err := r.cache.Content.GetOrLoad(ctx, "news:all", &items, func() (interface{}, error) {
		var rows []*models.NewsItem
		err := pickDB(r.db, tx).WithContext(ctx).
			Order("created_at DESC").Order("id DESC").
			Find(&rows).Error
		if err != nil {
			return nil, handleDBError(err, "list news items")
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *newsRepository) DeleteByTitle(ctx context.Context, tx *gorm.DB, title string) (bool, error) {
	result := pickDB(r.db, tx).WithContext(ctx).
		Where("title = ?", title).
		Delete(&models.NewsItem{})
	if result.Error != nil {
		return false, handleDBError(result.Error, "delete news item")
	}
	if result.RowsAffected > 0 && !inTx(tx) {
		r.InvalidateCache(ctx)
	}
	return result.RowsAffected > 0, nil
}

func (r *newsRepository) InvalidateCache(ctx context.Context) {
	cache.InvalidateNewsCache(ctx, r.cache)
}
