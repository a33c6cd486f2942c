package order

import (
	"commerce/internal/repository"
	"commerce/internal/validator"
)

var (
	// IDに一致する行が無い
	ErrNotFound = repository.ErrNotFound
	// 作成前の検証エラー（validator.FieldErrorで項目が分かる）
	ErrValidation = validator.ErrInvalidInput
)
