package services

import (
	"context"
	"fmt"
	"strings"

	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/storage"
)

// CatalogService manages categories and saved custom reports. Both stay
// owner-scoped: family members see shared totals but never each other's
// catalog entries.
type CatalogService struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewCatalogService(storage *storage.SQLiteRepository, logger *log.Logger) *CatalogService {
	return &CatalogService{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentLedger),
	}
}

func (s *CatalogService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return core.Category{}, core.ErrEmptyName
	}

	created, err := s.storage.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, userID)
}

func (s *CatalogService) RenameCategory(ctx context.Context, userID, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	return s.storage.UpdateCategory(ctx, userID, id, name)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteCategory(ctx, userID, id)
}

func (s *CatalogService) SaveReport(ctx context.Context, cr core.CustomReport) (core.CustomReport, error) {
	cr.Name = strings.TrimSpace(cr.Name)
	if cr.Name == "" {
		return core.CustomReport{}, core.ErrEmptyName
	}

	created, err := s.storage.CreateCustomReport(ctx, cr)
	if err != nil {
		return core.CustomReport{}, fmt.Errorf("save custom report: %w", err)
	}

	s.logger.InfoContext(ctx, "Custom report saved",
		log.FieldUserID, created.UserID,
		"name", created.Name)
	return created, nil
}

func (s *CatalogService) ListReports(ctx context.Context, userID int64) ([]core.CustomReport, error) {
	return s.storage.ListCustomReports(ctx, userID)
}

func (s *CatalogService) GetReport(ctx context.Context, userID, id int64) (core.CustomReport, error) {
	return s.storage.GetCustomReport(ctx, userID, id)
}

func (s *CatalogService) DeleteReport(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteCustomReport(ctx, userID, id)
}
