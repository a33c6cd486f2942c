package db_test

import (
	"context"
	"errors"
	"testing"

	"commerce/internal/infra/db"
	"commerce/internal/infra/db/dbtest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_FlattenIDs(t *testing.T) {
	res := db.NewResult(
		db.Row{"order_id": int64(3)},
		db.Row{"order_id": "1"},
		db.Row{"order_id": int64(3)},
		db.Row{"order_id": []byte("2")},
	)

	ids, err := res.FlattenIDs("order_id")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	_, err = db.NewResult(db.Row{"order_id": "x"}).FlattenIDs("order_id")
	assert.Error(t, err)
}

func TestResult_HashAndValue(t *testing.T) {
	res := db.NewResult(
		db.Row{"key": "gift", "value": "yes"},
		db.Row{"key": "channel", "value": []byte("web")},
	)
	h, err := res.Hash("key", "value")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"gift": "yes", "channel": "web"}, h)

	assert.Equal(t, "gift", res.Value("key"))
	assert.Nil(t, db.NewResult().Value("key"))
	assert.NotNil(t, db.NewResult().Rows())
}

func TestBind(t *testing.T) {
	res := db.NewResult(db.Row{"n": int64(1)}, db.Row{"n": int64(2)})
	out, err := db.Bind(res, func(r db.Row) (int64, error) {
		n, _ := r["n"].(int64)
		if n > 1 {
			return 0, errors.New("too big")
		}
		return n, nil
	})
	assert.Error(t, err)
	assert.Nil(t, out)

	out, err = db.Bind(db.NewResult(), func(r db.Row) (int64, error) { return 0, nil })
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestStorageError(t *testing.T) {
	rec := dbtest.NewRecorder()
	rec.Fail = func(c dbtest.Call) error { return &pgconn.PgError{Code: "23505", Message: "duplicate key"} }
	tx := db.NewTransaction(rec)
	require.NoError(t, tx.Add("INSERT INTO users (email) VALUES (?)", "a@example.com"))

	err := tx.Commit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrStorage)
	assert.True(t, db.IsUniqueViolation(err))

	var se *db.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "23505", se.Code)
}

func TestGormExecutor_Run(t *testing.T) {
	_, exec := dbtest.Executor(t)
	ctx := context.Background()

	require.NoError(t, exec.Exec(ctx, `INSERT INTO order_metadata (order_id, "key", "value") VALUES (?, ?, ?), (?, ?, ?)`,
		int64(1), "a", "x", int64(1), "b", "y"))

	res, err := exec.Run(ctx, `SELECT "key", "value" FROM order_metadata WHERE order_id IN ?`, []int64{1, 2})
	require.NoError(t, err)
	h, err := res.Hash("key", "value")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "x", "b": "y"}, h)

	_, err = exec.Run(ctx, "SELECT * FROM missing_table")
	assert.ErrorIs(t, err, db.ErrStorage)
}

func TestGormExecutor_Run_ExpressionColumns(t *testing.T) {
	_, exec := dbtest.Executor(t)
	ctx := context.Background()

	require.NoError(t, exec.Exec(ctx, `INSERT INTO order_metadata (order_id, "key", "value") VALUES (?, ?, ?), (?, ?, ?)`,
		int64(1), "a", "x", int64(2), "b", "y"))

	res, err := exec.Run(ctx, "SELECT COUNT(*) AS n FROM order_metadata")
	require.NoError(t, err)
	_, isPtr := res.Value("n").(*any)
	assert.False(t, isPtr)

	ids, err := res.FlattenIDs("n")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}
