package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/logger"
	"commerce/internal/normalize"
)

// field は 列 -> エンティティの項目 の対応1つ
type field[T any] struct {
	column string
	set    func(e *T, v any) error
}

func mapped[T, V any](column string, conv func(any) (V, error), p func(*T) *V) field[T] {
	return field[T]{column: column, set: func(e *T, v any) error {
		out, err := conv(v)
		if err != nil {
			return err
		}
		*p(e) = out
		return nil
	}}
}

func int64Field[T any](c string, p func(*T) *int64) field[T] { return mapped(c, normalize.Int64, p) }
func nullInt64Field[T any](c string, p func(*T) **int64) field[T] {
	return mapped(c, normalize.NullInt64, p)
}
func moneyField[T any](c string, p func(*T) *float64) field[T] { return mapped(c, normalize.Money, p) }
func rateField[T any](c string, p func(*T) *float64) field[T]  { return mapped(c, normalize.Rate, p) }
func stringField[T any](c string, p func(*T) *string) field[T] { return mapped(c, normalize.String, p) }
func nullStringField[T any](c string, p func(*T) **string) field[T] {
	return mapped(c, normalize.NullString, p)
}
func boolField[T any](c string, p func(*T) *bool) field[T] { return mapped(c, normalize.Bool, p) }
func unixField[T any](c string, p func(*T) *time.Time) field[T] {
	return mapped(c, normalize.Unix, p)
}
func nullUnixField[T any](c string, p func(*T) **time.Time) field[T] {
	return mapped(c, normalize.NullUnix, p)
}

// 作成・削除（・更新）のauthorship列
func authorshipFields[T any](p func(*T) *model.Authorship, withUpdate bool) []field[T] {
	fs := []field[T]{
		unixField("created_at", func(e *T) *time.Time { return &p(e).CreatedAt }),
		nullInt64Field("created_by", func(e *T) **int64 { return &p(e).CreatedBy }),
		nullUnixField("deleted_at", func(e *T) **time.Time { return &p(e).DeletedAt }),
		nullInt64Field("deleted_by", func(e *T) **int64 { return &p(e).DeletedBy }),
	}
	if withUpdate {
		fs = append(fs,
			nullUnixField("updated_at", func(e *T) **time.Time { return &p(e).UpdatedAt }),
			nullInt64Field("updated_by", func(e *T) **int64 { return &p(e).UpdatedBy }),
		)
	}
	return fs
}

// table は1種類のエンティティの読み込み定義
type table[T any] struct {
	name    string
	pk      string
	fields  []field[T]
	newFn   func() *T
	id      func(*T) int64
	orderID func(*T) int64
}

func (t table[T]) columns() string {
	cols := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		cols = append(cols, t.name+"."+f.column)
	}
	return strings.Join(cols, ", ")
}

func (t table[T]) bind(row db.Row) (*T, error) {
	e := t.newFn()
	for _, f := range t.fields {
		if err := f.set(e, row[f.column]); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.name, f.column, err)
		}
	}
	return e, nil
}

// rows は soft-delete を考慮して where に一致する行を主キー順で組み立てる。
func (t table[T]) rows(ctx context.Context, q db.Query, includeDeleted bool, where string, args ...any) ([]*T, error) {
	sql := "SELECT " + t.columns() + " FROM " + t.name + " WHERE " + where
	if !includeDeleted {
		sql += " AND " + t.name + ".deleted_at IS NULL"
	}
	sql += " ORDER BY " + t.name + "." + t.pk
	res, err := q.Run(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return db.Bind(res, t.bind)
}

// base は全サブローダー共通の読み込み
type base[T any] struct {
	q              db.Query
	log            *logger.Logger
	t              table[T]
	includeDeleted bool
}

func (b base[T]) byIDs(ctx context.Context, ids []int64) ([]*T, error) {
	if len(ids) == 0 {
		return []*T{}, nil
	}
	out, err := b.t.rows(ctx, b.q, b.includeDeleted, b.t.name+"."+b.t.pk+" IN ?", ids)
	if err != nil {
		return nil, err
	}
	b.log.Debug("entities loaded", "table", b.t.name, "requested", len(ids), "matched", len(out))
	return out, nil
}

func (b base[T]) byOrderIDs(ctx context.Context, orderIDs []int64) ([]*T, error) {
	if len(orderIDs) == 0 {
		return []*T{}, nil
	}
	out, err := b.t.rows(ctx, b.q, b.includeDeleted, b.t.name+".order_id IN ?", orderIDs)
	if err != nil {
		return nil, err
	}
	b.log.Debug("entities loaded by order", "table", b.t.name, "orders", len(orderIDs), "matched", len(out))
	return out, nil
}

// 結果を注文IDごとにまとめる（要求した注文は空でも入れる）
func groupByOrder[T any](orderIDs []int64, es []*T, orderID func(*T) int64) map[int64][]*T {
	out := make(map[int64][]*T, len(orderIDs))
	for _, id := range orderIDs {
		out[id] = []*T{}
	}
	for _, e := range es {
		oid := orderID(e)
		out[oid] = append(out[oid], e)
	}
	return out
}

func indexByID[T any](es []*T, id func(*T) int64) map[int64]*T {
	out := make(map[int64]*T, len(es))
	for _, e := range es {
		out[id(e)] = e
	}
	return out
}

func first[T any](es []*T, id int64) (*T, error) {
	if len(es) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return es[0], nil
}

// 重複を除いた正のIDだけ（順序は保つ）
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// 要求した注文に無ければ空スライス
func forOrder[T any](m map[int64][]*T, orderID int64) []*T {
	if es, ok := m[orderID]; ok {
		return es
	}
	return []*T{}
}
