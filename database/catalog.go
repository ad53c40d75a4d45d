package database

import (
	"context"
	"strings"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/comparison"
	"gorm.io/gorm"
)

// Invalidator drops cached catalog lookups after a write
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Catalog is a comparison catalog whose cached lookups can be dropped
type Catalog interface {
	comparison.Catalog
	Invalidator
}

// CatalogStore answers the comparison lookups from the database
type CatalogStore struct {
	db *gorm.DB
}

// NewCatalogStore creates a catalog store
func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// FindUniversitiesByName matches the whole name case-insensitively, lowest id first
func (s *CatalogStore) FindUniversitiesByName(ctx context.Context, name string) ([]model.University, error) {
	var universities []model.University
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("id ASC").
		Find(&universities).Error
	return universities, err
}

// FindUniversitiesBySlug matches the stored slug
func (s *CatalogStore) FindUniversitiesBySlug(ctx context.Context, slug string) ([]model.University, error) {
	var universities []model.University
	err := s.db.WithContext(ctx).
		Where("slug = ?", slug).
		Order("id ASC").
		Find(&universities).Error
	return universities, err
}

// FindProgramsByName matches the whole name case-insensitively, lowest id first
func (s *CatalogStore) FindProgramsByName(ctx context.Context, name string) ([]model.Program, error) {
	var programs []model.Program
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("id ASC").
		Find(&programs).Error
	return programs, err
}

// FindProgramsBySlug matches the stored slug
func (s *CatalogStore) FindProgramsBySlug(ctx context.Context, slug string) ([]model.Program, error) {
	var programs []model.Program
	err := s.db.WithContext(ctx).
		Where("slug = ?", slug).
		Order("id ASC").
		Find(&programs).Error
	return programs, err
}

// FindOffering returns the offering of programID at universityID, or nil.
// When the pair repeats the lowest id wins.
func (s *CatalogStore) FindOffering(ctx context.Context, universityID, programID uint) (*model.Offering, error) {
	var offerings []model.Offering
	err := s.db.WithContext(ctx).
		Where("university_id = ? AND program_id = ?", universityID, programID).
		Order("id ASC").
		Limit(1).
		Find(&offerings).Error
	if err != nil {
		return nil, err
	}
	if len(offerings) == 0 {
		return nil, nil
	}
	return &offerings[0], nil
}

// Invalidate is a no-op; the uncached store is always current
func (s *CatalogStore) Invalidate(ctx context.Context) error {
	return nil
}
