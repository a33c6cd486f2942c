package order

import (
	"context"
	"fmt"

	"commerce/internal/infra/db"
	"commerce/internal/normalize"
	"commerce/internal/status"
)

// loadHistory は所有者ごとのステータス履歴を (時刻 desc, コード desc) で読み込む。
func loadHistory(ctx context.Context, q db.Query, tableName, ownerColumn string, ids []int64) (map[int64][]status.Entry, error) {
	out := make(map[int64][]status.Entry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	res, err := q.Run(ctx, fmt.Sprintf(
		"SELECT %[2]s, status_code, created_at, created_by FROM %[1]s WHERE %[2]s IN ? ORDER BY %[2]s, created_at DESC, status_code DESC",
		tableName, ownerColumn), ids)
	if err != nil {
		return nil, err
	}
	for i, row := range res.Rows() {
		owner, err := normalize.Int64(row[ownerColumn])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", tableName, i, err)
		}
		code, err := normalize.Int64(row["status_code"])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", tableName, i, err)
		}
		at, err := normalize.Unix(row["created_at"])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", tableName, i, err)
		}
		by, err := normalize.NullInt64(row["created_by"])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", tableName, i, err)
		}
		out[owner] = append(out[owner], status.Entry{Code: status.Code(code), At: at, By: by})
	}
	return out, nil
}

// 履歴の無いものはnilのまま
func resolveStatuses(r *status.Resolver, histories map[int64][]status.Entry) (map[int64]*status.Status, error) {
	resolved, err := r.ResolveAll(histories)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*status.Status, len(resolved))
	for id, s := range resolved {
		out[id] = &s
	}
	return out, nil
}
