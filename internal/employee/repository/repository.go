package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/internal/employee/domain"
	"gorm.io/gorm"
)

type repository struct{}

// New returns the gorm-backed employee repository.
func New() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	if employee == nil {
		return errors.New("missing_employee")
	}
	return db.WithContext(ctx).Create(employee).Error
}

func (r *repository) Update(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	if employee == nil {
		return errors.New("missing_employee")
	}
	return db.WithContext(ctx).Save(employee).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Employee, error) {
	var employee domain.Employee
	err := db.WithContext(ctx).Where("id = ?", id).First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Employee, error) {
	query := db.WithContext(ctx).Model(&domain.Employee{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var employees []domain.Employee
	if err := query.Order("name ASC, id ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *repository) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Employee{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}
