package db

import (
	"context"

	"commerce/internal/normalize"

	"gorm.io/gorm"
)

// Query は読み取りの窓口（プレースホルダーは ? 、スライスは IN ? で展開）
type Query interface {
	Run(ctx context.Context, sql string, args ...any) (*Result, error)
}

// Executor はトランザクションのコミット時に使う実行系
type Executor interface {
	Query
	// Exec は結果行の無い文を実行する。
	Exec(ctx context.Context, sql string, args ...any) error
	// InsertID は RETURNING 付きのINSERTを実行して採番されたIDを返す。
	InsertID(ctx context.Context, sql string, args ...any) (int64, error)
	// InTx はfnを1つのDBトランザクションで実行する（エラーならロールバック）
	InTx(ctx context.Context, fn func(x Executor) error) error
}

type GormExecutor struct {
	db *gorm.DB
}

// DI
func NewGormExecutor(db *gorm.DB) *GormExecutor {
	return &GormExecutor{db: db}
}

func (e *GormExecutor) DB() *gorm.DB { return e.db }

func (e *GormExecutor) Run(ctx context.Context, sql string, args ...any) (*Result, error) {
	var rows []map[string]any
	if err := e.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, wrapStorage("query", err)
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		//式カラムはドライバによってポインタで入る
		for k, v := range r {
			r[k] = normalize.Deref(v)
		}
		out = append(out, Row(r))
	}
	return NewResult(out...), nil
}

func (e *GormExecutor) Exec(ctx context.Context, sql string, args ...any) error {
	return wrapStorage("exec", e.db.WithContext(ctx).Exec(sql, args...).Error)
}

func (e *GormExecutor) InsertID(ctx context.Context, sql string, args ...any) (int64, error) {
	var id int64
	row := e.db.WithContext(ctx).Raw(sql, args...).Row()
	if err := row.Scan(&id); err != nil {
		return 0, wrapStorage("insert", err)
	}
	return id, nil
}

func (e *GormExecutor) InTx(ctx context.Context, fn func(x Executor) error) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//txを持ったDBで作り直す
		return fn(&GormExecutor{db: tx})
	})
}

// Begin は新しいバッファ型トランザクションを開く。
func (e *GormExecutor) Begin() *Transaction {
	return NewTransaction(e)
}
