package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/mealmentor/internal/domain/answer"
	domconv "github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/relevance"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

// mockStore implements the Redis consumer interface for tests.
type mockStore struct {
	hsetFn    func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn func(ctx context.Context, key string) (map[string]string, error)
	rpushFn   func(ctx context.Context, key string, values ...string) error
	lrangeFn  func(ctx context.Context, key string, start, stop int64) ([]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) RPush(ctx context.Context, key string, values ...string) error {
	if m.rpushFn != nil {
		return m.rpushFn(ctx, key, values...)
	}
	return nil
}

func (m *mockStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if m.lrangeFn != nil {
		return m.lrangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

// mockPG implements pgConn for tests.
type mockPG struct {
	execs    []string
	execArgs [][]any
	execErr  error
	row      *mockRow
	rows     *mockRows
	queryErr error
	pingErr  error
}

func (m *mockPG) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.execs = append(m.execs, sql)
	m.execArgs = append(m.execArgs, args)
	return pgconn.NewCommandTag("INSERT 0 1"), m.execErr
}

func (m *mockPG) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row { return m.row }

func (m *mockPG) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.rows, nil
}

func (m *mockPG) Ping(context.Context) error { return m.pingErr }

// mockRow scans a fixed set of values.
type mockRow struct {
	values []any
	err    error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

// mockRows iterates over fixed rows.
type mockRows struct {
	data   [][]any
	pos    int
	closed bool
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return nil }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) Values() ([]any, error)                       { return r.data[r.pos-1], nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

func (r *mockRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *mockRows) Scan(dest ...any) error { return assign(r.data[r.pos-1], dest) }

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(values), len(dest))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *float64:
			*d = v.(float64)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

var testTime = time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

func testConversation() domconv.Conversation {
	return domconv.Conversation{
		ID:       "c-1",
		Question: "high protein vegan?",
		Record: answer.Record{
			Answer:       "Vegan Bowl",
			Model:        "gpt-4o-mini",
			ResponseTime: 1500 * time.Millisecond,
			Relevance:    relevance.Verdict{Label: relevance.Relevant, Explanation: "on topic"},
			Usage:        usage.New(1000, 10, 1010),
			EvalUsage:    usage.New(300, 20, 320),
			Cost:         decimal.RequireFromString("0.000213"),
		},
		CreatedAt: testTime,
	}
}
