package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	domainrepo "commerce/internal/repository"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewして注文ローダーに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var row db.UserRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", domainrepo.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return toUser(row), nil
}

func toUser(row db.UserRow) *model.User {
	return &model.User{
		ID:        row.ID,
		Email:     row.Email,
		Forename:  row.Forename,
		Surname:   row.Surname,
		CreatedAt: time.Unix(row.CreatedAt, 0).UTC(),
	}
}
