package repository

import (
	"context"
	"time"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	repo "commerce/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&db.AuditLogRow{})

	if filter.ActorUserID != nil {
		q = q.Where("actor_user_id = ?", *filter.ActorUserID)
	}
	if filter.Action != nil {
		q = q.Where("action = ?", string(*filter.Action))
	}
	if filter.ResourceType != nil {
		q = q.Where("resource_type = ?", string(*filter.ResourceType))
	}
	if filter.OrderID != nil {
		q = q.Where("order_id = ?", *filter.OrderID)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", filter.CreatedFrom.Unix())
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", filter.CreatedTo.Unix())
	}

	//新しい順
	q = q.Order("id DESC")

	// limit/offset
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	q = q.Limit(limit).Offset(filter.Offset)

	var rows []db.AuditLogRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]model.AuditLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, model.AuditLog{
			ID:           row.ID,
			ActorUserID:  row.ActorUserID,
			Action:       model.AuditAction(row.Action),
			ResourceType: model.AuditResourceType(row.ResourceType),
			ResourceID:   row.ResourceID,
			OrderID:      row.OrderID,
			AfterJSON:    row.AfterJSON,
			CreatedAt:    time.Unix(row.CreatedAt, 0).UTC(),
		})
	}
	return logs, nil
}
