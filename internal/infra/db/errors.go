package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ストレージ側の実行エラー（そのまま上に返す）
	ErrStorage = errors.New("storage failure")
	// コミット済み/ロールバック済みのトランザクション
	ErrTxClosed = errors.New("transaction is closed")
	// 未解決（未コミット or 未登録）のIDプレースホルダー
	ErrUnresolvedID = errors.New("unresolved id variable")
)

// StorageError はドライバのエラーを包む。CodeはpostgresのSQLSTATE（取れた場合だけ）
type StorageError struct {
	Op   string
	Code string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s [%s]: %v", ErrStorage, e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	out := &StorageError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		out.Code = pgErr.Code
	}
	return out
}

// IsUniqueViolation は23505（unique_violation）か
func IsUniqueViolation(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == "23505"
}
