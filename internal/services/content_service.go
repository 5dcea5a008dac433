package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/validator"
)

type galleryService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGalleryService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) GalleryService {
	return &galleryService{repo: repo, db: db, logger: logger, validator: validator}
}

func (s *galleryService) Add(ctx context.Context, req *GalleryItemRequest, actor string) (*models.GalleryItem, error) {
	if err := requireAdmin(ctx, s.repo, actor, "gallery", "add"); err != nil {
		return nil, err
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	item := &models.GalleryItem{
		Description: strings.TrimSpace(req.Description),
		ImageURL:    req.ImageURL,
		CreatedBy:   actor,
	}
	if err := s.repo.Gallery().Create(ctx, nil, item); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrGalleryItemExists
		}
		return nil, fmt.Errorf("failed to add gallery item: %w", err)
	}

	s.logger.Info("Gallery item added", "description", item.Description, "actor", actor)
	return item, nil
}

func (s *galleryService) List(ctx context.Context) ([]*models.GalleryItem, error) {
	items, err := s.repo.Gallery().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}
	return items, nil
}

func (s *galleryService) Delete(ctx context.Context, description, actor string) error {
	if err := requireAdmin(ctx, s.repo, actor, "gallery", "delete"); err != nil {
		return err
	}

	deleted, err := s.repo.Gallery().DeleteByDescription(ctx, nil, strings.TrimSpace(description))
	if err != nil {
		return fmt.Errorf("failed to delete gallery item: %w", err)
	}
	if !deleted {
		return ErrGalleryItemNotFound
	}

	s.logger.Info("Gallery item deleted", "description", description, "actor", actor)
	return nil
}

type newsService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewNewsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) NewsService {
	return &newsService{repo: repo, db: db, logger: logger, validator: validator, now: time.Now}
}

func (s *newsService) Create(ctx context.Context, req *NewsCreateRequest, actor string) (*models.NewsItem, error) {
	if err := requireAdmin(ctx, s.repo, actor, "news", "create"); err != nil {
		return nil, err
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	item := &models.NewsItem{
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		CreatedAt: s.now(),
	}
	if req.CreatedAt != nil {
		item.CreatedAt = *req.CreatedAt
	}

	if err := s.repo.News().Create(ctx, nil, item); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrNewsItemExists
		}
		return nil, fmt.Errorf("failed to create news item: %w", err)
	}

	s.logger.Info("News item created", "title", item.Title, "actor", actor)
	return item, nil
}

func (s *newsService) Edit(ctx context.Context, title string, req *NewsEditRequest, actor string) (*models.NewsItem, error) {
	if err := requireAdmin(ctx, s.repo, actor, "news", "edit"); err != nil {
		return nil, err
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	var item *models.NewsItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = s.repo.News().GetByTitle(ctx, tx, strings.TrimSpace(title))
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrNewsItemNotFound
			}
			return err
		}

		item.Content = req.Content
		if req.CreatedAt != nil {
			item.CreatedAt = *req.CreatedAt
		}
		return s.repo.News().Update(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}
	s.repo.News().InvalidateCache(ctx)

	s.logger.Info("News item edited", "title", item.Title, "actor", actor)
	return item, nil
}

func (s *newsService) Delete(ctx context.Context, title, actor string) error {
	if err := requireAdmin(ctx, s.repo, actor, "news", "delete"); err != nil {
		return err
	}

	deleted, err := s.repo.News().DeleteByTitle(ctx, nil, strings.TrimSpace(title))
	if err != nil {
		return fmt.Errorf("failed to delete news item: %w", err)
	}
	if !deleted {
		return ErrNewsItemNotFound
	}

	s.logger.Info("News item deleted", "title", title, "actor", actor)
	return nil
}

func (s *newsService) List(ctx context.Context) ([]*models.NewsItem, error) {
	items, err := s.repo.News().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	return items, nil
}
