package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DivisionRepository defines decoupled operations for the division cache.
type DivisionRepository interface {
	ReplaceAll(ctx context.Context, divisions []Division) error
	List(ctx context.Context) ([]Division, error)
}

// gormDivisionRepo is a GORM-backed implementation of DivisionRepository.
// Use constructor NewDivisionRepository to obtain an instance.
type gormDivisionRepo struct{ db *gorm.DB }

// NewDivisionRepository creates a DivisionRepository. Accepts *gorm.DB to avoid global access.
func NewDivisionRepository(db *gorm.DB) DivisionRepository { return &gormDivisionRepo{db: db} }

func (r *gormDivisionRepo) ReplaceAll(ctx context.Context, divisions []Division) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&Division{}).Error; err != nil {
			return err
		}
		if len(divisions) == 0 {
			return nil
		}
		return tx.Create(&divisions).Error
	})
}

func (r *gormDivisionRepo) List(ctx context.Context) ([]Division, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var divisions []Division
	if err := r.db.WithContext(ctx).Order("customer_name, description").Find(&divisions).Error; err != nil {
		return nil, err
	}
	return divisions, nil
}
