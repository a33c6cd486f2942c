package dbtest

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"commerce/internal/infra/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var nonWord = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Open はテストごとに独立したインメモリsqliteを開き、スキーマを作る。
// sqliteが使えない環境（cgo無し等）ではSkipする。
func Open(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := "file:" + nonWord.ReplaceAllString(tb.Name(), "_") + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Skipf("sqlite unavailable: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Skipf("sqlite unavailable: %v", err)
	}
	//共有キャッシュでも1接続に絞る
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := sqlDB.Ping(); err != nil {
		tb.Skipf("sqlite unavailable: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return gdb
}

// Executor はOpenしたDBの実行系
func Executor(tb testing.TB) (*gorm.DB, *db.GormExecutor) {
	tb.Helper()
	gdb := Open(tb)
	return gdb, db.NewGormExecutor(gdb)
}

// Call は Recorder が受けた1回の実行
type Call struct {
	Kind string // query/exec/insert
	SQL  string
	Args []any
}

// Recorder は実行された文を記録する db.Executor。
// InsertIDはNextIDから順に採番する。Failが非nilならその戻り値でエラーにする。
type Recorder struct {
	mu sync.Mutex

	Calls   []Call
	NextID  int64
	Commits int
	Aborts  int

	Fail    func(c Call) error
	Results func(sql string, args []any) *db.Result
}

var _ db.Executor = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{NextID: 1}
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, c)
	if r.Fail != nil {
		return r.Fail(c)
	}
	return nil
}

func (r *Recorder) Run(ctx context.Context, sql string, args ...any) (*db.Result, error) {
	if err := r.record(Call{Kind: "query", SQL: sql, Args: args}); err != nil {
		return nil, err
	}
	if r.Results != nil {
		if res := r.Results(sql, args); res != nil {
			return res, nil
		}
	}
	return db.NewResult(), nil
}

func (r *Recorder) Exec(ctx context.Context, sql string, args ...any) error {
	return r.record(Call{Kind: "exec", SQL: sql, Args: args})
}

func (r *Recorder) InsertID(ctx context.Context, sql string, args ...any) (int64, error) {
	if err := r.record(Call{Kind: "insert", SQL: sql, Args: args}); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.NextID
	r.NextID++
	return id, nil
}

func (r *Recorder) InTx(ctx context.Context, fn func(x db.Executor) error) error {
	err := fn(r)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Aborts++
		return err
	}
	r.Commits++
	return nil
}

// Writes は exec/insert だけを返す。
func (r *Recorder) Writes() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, 0, len(r.Calls))
	for _, c := range r.Calls {
		if c.Kind != "query" {
			out = append(out, c)
		}
	}
	return out
}

// Insert は行をそのまま作成する（失敗したらFatal）
func Insert(tb testing.TB, gdb *gorm.DB, rows ...any) {
	tb.Helper()
	for _, r := range rows {
		if err := gdb.Create(r).Error; err != nil {
			tb.Fatalf("insert %T: %v", r, err)
		}
	}
}

// Ptr は値のポインタ
func Ptr[T any](v T) *T { return &v }
