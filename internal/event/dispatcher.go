package event

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"commerce/internal/infra/db"
	"commerce/internal/logger"
)

// 注文配下のエンティティ作成後（コミット前）
const EntityCreateEnd = "order.entity.create.end"

// EntityEvent は作成途中のエンティティと開いているトランザクション
type EntityEvent struct {
	entity any
	tx     *db.Transaction
}

func NewEntityEvent(entity any, tx *db.Transaction) *EntityEvent {
	return &EntityEvent{entity: entity, tx: tx}
}

func (e *EntityEvent) Entity() any { return e.entity }

// SetEntity はエンティティを差し替える（後続のリスナーと呼び出し元はこれを使う）
func (e *EntityEvent) SetEntity(v any) { e.entity = v }

// Transaction は同じトランザクションに文を追加するためのもの
func (e *EntityEvent) Transaction() *db.Transaction { return e.tx }

type Listener interface {
	Handle(ctx context.Context, ev *EntityEvent) error
}

type ListenerFunc func(ctx context.Context, ev *EntityEvent) error

func (f ListenerFunc) Handle(ctx context.Context, ev *EntityEvent) error { return f(ctx, ev) }

type subscription struct {
	priority int
	seq      int
	l        Listener
}

// Dispatcher は同期・プロセス内のイベント配信
type Dispatcher struct {
	mu   sync.RWMutex
	subs map[string][]subscription
	seq  int
	log  *logger.Logger
}

func NewDispatcher(log *logger.Logger) *Dispatcher {
	return &Dispatcher{subs: map[string][]subscription{}, log: logger.OrNop(log)}
}

// Subscribe はpriorityの大きい順に呼ばれる（同じなら登録順）
func (d *Dispatcher) Subscribe(name string, priority int, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	subs := append(d.subs[name], subscription{priority: priority, seq: d.seq, l: l})
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].priority != subs[j].priority {
			return subs[i].priority > subs[j].priority
		}
		return subs[i].seq < subs[j].seq
	})
	d.subs[name] = subs
}

func (d *Dispatcher) Listeners(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[name])
}

// Dispatch は全リスナーを順に呼ぶ。1つでもエラーならそこで止める
func (d *Dispatcher) Dispatch(ctx context.Context, name string, ev *EntityEvent) error {
	d.mu.RLock()
	subs := append([]subscription(nil), d.subs[name]...)
	d.mu.RUnlock()

	for i, s := range subs {
		if err := s.l.Handle(ctx, ev); err != nil {
			d.log.Warn("listener failed", "event", name, "listener", i, "err", err)
			return fmt.Errorf("event %s: %w", name, err)
		}
	}
	d.log.Debug("event dispatched", "event", name, "listeners", len(subs))
	return nil
}
