package validator

import (
	"errors"
	"fmt"

	"commerce/internal/domain/model"
)

// 入力が不正
var ErrInvalidInput = errors.New("invalid input")

// FieldError はどの項目がなぜ不正か
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrInvalidInput }

func invalid(field, msg string) error {
	return &FieldError{Field: field, Message: msg}
}

// 注文の参照チェック（Orderがあればそちらを優先）
func orderID(o *model.Order, id *int64) error {
	if o != nil {
		if o.ID <= 0 {
			return invalid("order", "order must be saved")
		}
		*id = o.ID
	}
	if *id <= 0 {
		return invalid("order", "order is required")
	}
	return nil
}

// 返金を検証
func ValidateRefund(r *model.Refund) error {
	if err := orderID(r.Order, &r.OrderID); err != nil {
		return err
	}
	// 金額は0より大きい
	if r.Amount <= 0 {
		return invalid("amount", "amount must be greater than 0")
	}
	if r.Payment != nil && r.Payment.ID <= 0 && r.Payment.IDVar == "" {
		return invalid("payment", "payment must be saved")
	}
	return nil
}

// 明細を検証
func ValidateItem(it *model.Item) error {
	if err := orderID(it.Order, &it.OrderID); err != nil {
		return err
	}
	if it.UnitID <= 0 || it.ProductID <= 0 {
		return invalid("unit", "product unit is required")
	}
	if it.ListPrice < 0 || it.Gross < 0 {
		return invalid("price", "price must not be negative")
	}
	return nil
}

// 住所を検証
func ValidateAddress(a *model.Address) error {
	if err := orderID(a.Order, &a.OrderID); err != nil {
		return err
	}
	if !a.Type.Valid() {
		return invalid("type", "address type must be delivery or billing")
	}
	if a.Lines[0] == "" {
		return invalid("lines", "first address line is required")
	}
	// 必須チェック
	if a.Postcode == "" || a.CountryID == "" {
		return invalid("postcode", "postcode and country are required")
	}
	return nil
}

// メモを検証
func ValidateNote(n *model.Note) error {
	if err := orderID(n.Order, &n.OrderID); err != nil {
		return err
	}
	if n.Note == "" {
		return invalid("note", "note is required")
	}
	return nil
}

// 支払いを検証
func ValidatePayment(p *model.Payment) error {
	if err := orderID(p.Order, &p.OrderID); err != nil {
		return err
	}
	if p.Method.Name == "" {
		return invalid("method", "method is required")
	}
	if p.Amount <= 0 {
		return invalid("amount", "amount must be greater than 0")
	}
	return nil
}

// 発送を検証
func ValidateDispatch(d *model.Dispatch) error {
	if err := orderID(d.Order, &d.OrderID); err != nil {
		return err
	}
	if d.Method.Name == "" {
		return invalid("method", "method is required")
	}
	if d.Cost < 0 {
		return invalid("cost", "cost must not be negative")
	}
	return nil
}
