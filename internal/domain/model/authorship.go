package model

import (
	"errors"
	"time"
)

var (
	ErrUpdateDisabled = errors.New("authorship update is disabled")
	ErrAlreadyCreated = errors.New("authorship is already created")
)

// Authorship は作成・更新・削除の (時刻, 操作ユーザー)
type Authorship struct {
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy *int64     `json:"created_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	UpdatedBy *int64     `json:"updated_by,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy *int64     `json:"deleted_by,omitempty"`

	updateDisabled bool
}

// Create は作成情報を1度だけ設定する。
func (a *Authorship) Create(at time.Time, by *int64) error {
	if a.IsCreated() {
		return ErrAlreadyCreated
	}
	a.CreatedAt = at
	a.CreatedBy = by
	return nil
}

func (a *Authorship) Update(at time.Time, by *int64) error {
	if a.updateDisabled {
		return ErrUpdateDisabled
	}
	a.UpdatedAt = &at
	a.UpdatedBy = by
	return nil
}

func (a *Authorship) Delete(at time.Time, by *int64) {
	a.DeletedAt = &at
	a.DeletedBy = by
}

// DisableUpdate は以後のUpdateを拒否する（戻せない）
func (a *Authorship) DisableUpdate() { a.updateDisabled = true }

func (a *Authorship) UpdateEnabled() bool { return !a.updateDisabled }

func (a *Authorship) IsCreated() bool { return !a.CreatedAt.IsZero() }

func (a *Authorship) IsDeleted() bool { return a.DeletedAt != nil }
