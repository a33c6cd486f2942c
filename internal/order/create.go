package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commerce/internal/domain/model"
	"commerce/internal/event"
	"commerce/internal/infra/db"
	"commerce/internal/logger"
)

// EventDispatcher は作成途中のエンティティを外部に渡す窓口
type EventDispatcher interface {
	Dispatch(ctx context.Context, name string, ev *event.EntityEvent) error
}

// State は作成処理の段階
type State string

const (
	StateAssembling State = "assembling"
	StateValidating State = "validating"
	StateEnqueued   State = "enqueued"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
	StateHandedOff  State = "handed_off"
)

var errNoExecutor = errors.New("no transaction or executor")

type creator struct {
	exec   db.Executor
	events EventDispatcher
	log    *logger.Logger
	now    func() time.Time
	actor  *int64
	tx     *db.Transaction
}

type CreateOption func(*creator)

// WithActor は作成者（authorship未設定のとき使う）
func WithActor(userID int64) CreateOption {
	return func(c *creator) {
		if userID > 0 {
			c.actor = &userID
		}
	}
}

func WithClock(now func() time.Time) CreateOption {
	return func(c *creator) { c.now = now }
}

func WithLogger(log *logger.Logger) CreateOption {
	return func(c *creator) { c.log = logger.OrNop(log) }
}

func newCreator(exec db.Executor, events EventDispatcher, opts []CreateOption) creator {
	c := creator{exec: exec, events: events, log: logger.Nop(), now: time.Now}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// createSteps はエンティティ種類ごとの処理
type createSteps[T any] struct {
	kind       string
	authorship func(*T) *model.Authorship
	validate   func(*T) error
	// enqueue はINSERTを積んでプレースホルダーを返す。
	enqueue func(tx *db.Transaction, e *T) (db.IDVar, error)
	bind    func(e *T, v db.IDVar)
	reload  func(ctx context.Context, id int64) (*T, error)
}

// create は 組み立て -> 検証 -> キュー投入 -> イベント -> コミット/引き渡し を行う。
func create[T any](ctx context.Context, c creator, e *T, s createSteps[T]) (*T, error) {
	log := c.log.With("entity", s.kind)

	// 作成情報は未設定のときだけ
	if a := s.authorship(e); !a.IsCreated() {
		if err := a.Create(c.now().UTC().Truncate(time.Second), c.actor); err != nil {
			return nil, err
		}
	}

	// 検証（ここで失敗したら何も積まない）
	if err := s.validate(e); err != nil {
		log.Debug("create rejected", "state", StateValidating, "err", err)
		return nil, err
	}

	tx := c.tx
	owned := tx == nil
	if owned {
		if c.exec == nil {
			return nil, errNoExecutor
		}
		tx = db.NewTransaction(c.exec)
	}
	log = log.With("tx", tx.ID())

	abort := func(err error) (*T, error) {
		if owned {
			_ = tx.Rollback()
			log.Warn("create rolled back", "state", StateRolledBack, "err", err)
		}
		return nil, err
	}

	v, err := s.enqueue(tx, e)
	if err != nil {
		return abort(err)
	}
	s.bind(e, v)
	log.Debug("create enqueued", "state", StateEnqueued, "id_var", v)

	if c.events != nil {
		ev := event.NewEntityEvent(e, tx)
		if err := c.events.Dispatch(ctx, event.EntityCreateEnd, ev); err != nil {
			return abort(err)
		}
		out, ok := ev.Entity().(*T)
		if !ok || out == nil {
			return abort(fmt.Errorf("%s create: listener replaced entity with %T", s.kind, ev.Entity()))
		}
		e = out
	}

	if !owned {
		log.Debug("create handed off", "state", StateHandedOff, "id_var", v)
		return e, nil
	}

	if err := tx.Commit(ctx); err != nil {
		log.Warn("create rolled back", "state", StateRolledBack, "err", err)
		return nil, err
	}
	id, err := tx.IDVariable(v)
	if err != nil {
		return nil, err
	}
	log.Info("create committed", "state", StateCommitted, "id", id)

	// 保存された内容を読み直して返す
	return s.reload(ctx, id)
}

// 未コミットのエンティティはプレースホルダーで参照する
func idOrVar(id int64, v db.IDVar) any {
	if v != "" {
		return v
	}
	return id
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
