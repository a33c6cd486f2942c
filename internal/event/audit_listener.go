package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
)

const insertAuditLog = `INSERT INTO audit_log
	(actor_user_id, action, resource_type, resource_id, order_id, after_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

// AuditListener は作成されたエンティティの監査ログを同じトランザクションに積む。
type AuditListener struct {
	now func() time.Time
}

func NewAuditListener(now func() time.Time) *AuditListener {
	if now == nil {
		now = time.Now
	}
	return &AuditListener{now: now}
}

func (l *AuditListener) Handle(ctx context.Context, ev *EntityEvent) error {
	tx := ev.Transaction()
	if tx == nil {
		return nil
	}
	typ, resource, orderID, actor, ok := describe(ev.Entity())
	if !ok {
		return nil
	}
	after, err := json.Marshal(ev.Entity())
	if err != nil {
		return fmt.Errorf("audit %s: %w", typ, err)
	}
	return tx.Add(insertAuditLog,
		actor, string(model.AuditActionCreateEntity), string(typ), resource, orderID, string(after), l.now().Unix())
}

// 未コミットならIDではなくプレースホルダーを渡す
func ref(id int64, v db.IDVar) any {
	if v != "" {
		return v
	}
	return id
}

func describe(e any) (model.AuditResourceType, any, int64, *int64, bool) {
	switch v := e.(type) {
	case *model.Refund:
		return model.AuditResourceRefund, ref(v.ID, v.IDVar), v.OrderID, v.Authorship.CreatedBy, true
	case *model.Item:
		return model.AuditResourceItem, ref(v.ID, v.IDVar), v.OrderID, v.Authorship.CreatedBy, true
	case *model.Address:
		return model.AuditResourceAddress, ref(v.ID, v.IDVar), v.OrderID, v.Authorship.CreatedBy, true
	case *model.Note:
		return model.AuditResourceNote, ref(v.ID, v.IDVar), v.OrderID, v.Authorship.CreatedBy, true
	case *model.Payment:
		return model.AuditResourcePayment, ref(v.ID, v.IDVar), v.OrderID, v.Authorship.CreatedBy, true
	case *model.Dispatch:
		return model.AuditResourceDispatch, ref(v.ID, v.IDVar), v.OrderID, v.Authorship.CreatedBy, true
	}
	return "", nil, 0, nil, false
}
