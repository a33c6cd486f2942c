package db

import (
	"context"
	"fmt"
	"strconv"

	"commerce/internal/domain/model"

	"github.com/google/uuid"
)

// IDVar はコミット前のINSERTの主キーを指すプレースホルダー（エンティティが保持する型と同じ）
type IDVar = model.IDVar

type TxState int

const (
	TxOpen TxState = iota
	TxCommitted
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxOpen:
		return "open"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled_back"
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

// Statement はキューに積まれた1文
type Statement struct {
	SQL   string
	Args  []any
	IDVar IDVar // 空でなければINSERTで採番IDをこの名前に束縛する
}

// Transaction は文をため込み、Commitでまとめて1つのDBトランザクションで実行する。
// Commitまでストレージには何も送らない。
type Transaction struct {
	id    string
	exec  Executor
	stmts []Statement
	vars  map[IDVar]int64
	seq   int
	state TxState
}

func NewTransaction(exec Executor) *Transaction {
	return &Transaction{
		id:   uuid.NewString(),
		exec: exec,
		vars: map[IDVar]int64{},
	}
}

// ID はログ相関用
func (t *Transaction) ID() string { return t.id }

func (t *Transaction) State() TxState { return t.state }

func (t *Transaction) Len() int { return len(t.stmts) }

// Statements はキューのコピー
func (t *Transaction) Statements() []Statement {
	out := make([]Statement, len(t.stmts))
	copy(out, t.stmts)
	return out
}

// Add は結果行の無い文を積む。
func (t *Transaction) Add(sql string, args ...any) error {
	if t.state != TxOpen {
		return ErrTxClosed
	}
	t.stmts = append(t.stmts, Statement{SQL: sql, Args: args})
	return nil
}

// NewIDVariable はこのトランザクションで一意なプレースホルダー名を発行する。
func (t *Transaction) NewIDVariable(prefix string) IDVar {
	t.seq++
	return IDVar(fmt.Sprintf("%s_%d", prefix, t.seq))
}

// SetIDVariable は直前に積んだINSERT（RETURNING付き）の採番IDをvに束縛する。
func (t *Transaction) SetIDVariable(v IDVar) error {
	if t.state != TxOpen {
		return ErrTxClosed
	}
	if len(t.stmts) == 0 {
		return fmt.Errorf("set id variable %s: no statement queued", v)
	}
	for _, s := range t.stmts {
		if s.IDVar == v {
			return fmt.Errorf("id variable %s is already bound", v)
		}
	}
	t.stmts[len(t.stmts)-1].IDVar = v
	return nil
}

// AddInsert はINSERTを積み、新しいプレースホルダーを束縛して返す。
func (t *Transaction) AddInsert(prefix string, sql string, args ...any) (IDVar, error) {
	if err := t.Add(sql, args...); err != nil {
		return "", err
	}
	v := t.NewIDVariable(prefix)
	if err := t.SetIDVariable(v); err != nil {
		return "", err
	}
	return v, nil
}

// IDVariable はコミット後に解決された主キーを返す。
func (t *Transaction) IDVariable(v IDVar) (int64, error) {
	id, ok := t.vars[v]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnresolvedID, v)
	}
	return id, nil
}

// Commit は積んだ文を順に実行する。途中で失敗したら全体をロールバックする。
func (t *Transaction) Commit(ctx context.Context) error {
	if t.state != TxOpen {
		return ErrTxClosed
	}
	resolved := map[IDVar]int64{}
	err := t.exec.InTx(ctx, func(x Executor) error {
		for i, s := range t.stmts {
			args, err := substitute(s.Args, resolved)
			if err != nil {
				return fmt.Errorf("statement %d: %w", i, err)
			}
			if s.IDVar != "" {
				id, err := x.InsertID(ctx, s.SQL, args...)
				if err != nil {
					return wrapStorage(fmt.Sprintf("statement %d", i), err)
				}
				resolved[s.IDVar] = id
				continue
			}
			if err := x.Exec(ctx, s.SQL, args...); err != nil {
				return wrapStorage(fmt.Sprintf("statement %d", i), err)
			}
		}
		return nil
	})
	if err != nil {
		t.state = TxRolledBack
		t.stmts = nil
		return err
	}
	t.vars = resolved
	t.state = TxCommitted
	return nil
}

// Rollback はキューを捨てる。コミット前なのでストレージには何も残らない。
func (t *Transaction) Rollback() error {
	if t.state == TxCommitted {
		return ErrTxClosed
	}
	t.stmts = nil
	t.state = TxRolledBack
	return nil
}

// プレースホルダー引数を採番済みIDに差し替える
func substitute(args []any, resolved map[IDVar]int64) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		v, ok := a.(IDVar)
		if !ok {
			out[i] = a
			continue
		}
		id, ok := resolved[v]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedID, v)
		}
		out[i] = id
	}
	return out, nil
}
