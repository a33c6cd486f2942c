package repository

import (
	"context"

	"commerce/internal/domain/model"
)

// 取得を約束
type UserRepository interface {
	// IDからユーザーを1件取得する（無ければErrNotFound）
	FindByID(ctx context.Context, id int64) (*model.User, error)
}
