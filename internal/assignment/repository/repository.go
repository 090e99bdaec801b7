package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/internal/assignment/domain"
	"gorm.io/gorm"
)

type repository struct{}

// New returns the gorm-backed assignment repository.
func New() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, assignment *domain.Assignment) error {
	if assignment == nil {
		return errors.New("missing_assignment")
	}
	return db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) Update(ctx context.Context, db *gorm.DB, assignment *domain.Assignment) error {
	if assignment == nil {
		return errors.New("missing_assignment")
	}
	return db.WithContext(ctx).Save(assignment).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Assignment, error) {
	var assignment domain.Assignment
	err := db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Assignment, error) {
	query := db.WithContext(ctx).Model(&domain.Assignment{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var assignments []domain.Assignment
	if err := query.Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *repository) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Assignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

func (r *repository) ActiveForPeriod(ctx context.Context, db *gorm.DB, clientID snowflake.ID, year, month int) ([]domain.Assignment, error) {
	period := year*12 + month
	var assignments []domain.Assignment
	err := db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("start_year * 12 + start_month <= ?", period).
		Where("end_year IS NULL OR end_year * 12 + end_month >= ?", period).
		Order("id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}
