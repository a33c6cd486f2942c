package db

import (
	"fmt"

	"commerce/internal/normalize"
)

// Row は1行分（列名 -> ドライバが返した値）
type Row map[string]any

// Result はクエリ結果の行集合
type Result struct {
	rows []Row
}

func NewResult(rows ...Row) *Result {
	if rows == nil {
		rows = []Row{}
	}
	return &Result{rows: rows}
}

func (r *Result) Len() int { return len(r.rows) }

func (r *Result) Rows() []Row { return r.rows }

// Flatten は1列だけを取り出す。
func (r *Result) Flatten(column string) []any {
	out := make([]any, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row[column])
	}
	return out
}

// FlattenIDs は1列を整数IDとして取り出す（重複は最初の位置だけ残す）
func (r *Result) FlattenIDs(column string) ([]int64, error) {
	seen := make(map[int64]struct{}, len(r.rows))
	out := make([]int64, 0, len(r.rows))
	for _, v := range r.Flatten(column) {
		id, err := normalize.Int64(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", column, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// Hash は key列 -> value列 のマップにする。同じkeyは後勝ち
func (r *Result) Hash(key, value string) (map[string]string, error) {
	out := make(map[string]string, len(r.rows))
	for _, row := range r.rows {
		k, err := normalize.String(row[key])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", key, err)
		}
		v, err := normalize.String(row[value])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", value, err)
		}
		out[k] = v
	}
	return out, nil
}

// Value は先頭行の指定列（0件ならnil）
func (r *Result) Value(column string) any {
	if len(r.rows) == 0 {
		return nil
	}
	return r.rows[0][column]
}

// Bind は各行を型付きの値に組み立てる。
func Bind[T any](r *Result, fn func(Row) (T, error)) ([]T, error) {
	out := make([]T, 0, len(r.rows))
	for i, row := range r.rows {
		v, err := fn(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
