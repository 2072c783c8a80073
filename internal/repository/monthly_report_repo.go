package repository

import (
	"context"

	"mrtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MonthlyReportRepository defines the interface for data access of MonthlyReport entities
type MonthlyReportRepository interface {
	Upsert(ctx context.Context, report *model.MonthlyReport) error
	List(ctx context.Context, mrID *uuid.UUID, page, limit int) ([]model.MonthlyReport, int64, error)
}

type monthlyReportRepository struct {
	db *gorm.DB
}

// NewMonthlyReportRepository returns a new instance of MonthlyReportRepository
func NewMonthlyReportRepository(db *gorm.DB) MonthlyReportRepository {
	return &monthlyReportRepository{db: db}
}

// Upsert writes the rollup for (mr, month, year), replacing an earlier run
func (r *monthlyReportRepository) Upsert(ctx context.Context, report *model.MonthlyReport) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "mr_id"}, {Name: "month"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_visits", "total_orders", "total_value", "status", "updated_at",
		}),
	}).Create(report).Error
}

func (r *monthlyReportRepository) List(ctx context.Context, mrID *uuid.UUID, page, limit int) ([]model.MonthlyReport, int64, error) {
	db := GetDB(ctx, r.db)

	countQuery := db.Model(&model.MonthlyReport{})
	if mrID != nil {
		countQuery = countQuery.Where("mr_id = ?", *mrID)
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetchQuery := db
	if mrID != nil {
		fetchQuery = fetchQuery.Where("mr_id = ?", *mrID)
	}
	var reports []model.MonthlyReport
	offset := (page - 1) * limit
	if err := fetchQuery.Order("year DESC, month DESC").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}
