package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/answer"
	domconv "github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/feedback"
	"github.com/kailas-cloud/mealmentor/internal/domain/relevance"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

// pgConn is the subset of *pgxpool.Pool the repository uses.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// schema is applied by Migrate. Feedback does not reference conversations so that
// ratings for unknown ids are still recorded.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		model_used TEXT NOT NULL,
		response_time DOUBLE PRECISION NOT NULL,
		relevance TEXT NOT NULL,
		relevance_explanation TEXT NOT NULL,
		prompt_tokens INTEGER NOT NULL,
		completion_tokens INTEGER NOT NULL,
		total_tokens INTEGER NOT NULL,
		eval_prompt_tokens INTEGER NOT NULL,
		eval_completion_tokens INTEGER NOT NULL,
		eval_total_tokens INTEGER NOT NULL,
		cost NUMERIC NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id BIGSERIAL PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		feedback INTEGER NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS feedback_conversation_id_idx ON feedback (conversation_id)`,
}

const upsertConversation = `
	INSERT INTO conversations (
		id, question, answer, model_used, response_time, relevance, relevance_explanation,
		prompt_tokens, completion_tokens, total_tokens,
		eval_prompt_tokens, eval_completion_tokens, eval_total_tokens,
		cost, timestamp
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14::numeric, $15)
	ON CONFLICT (id) DO UPDATE SET
		question = EXCLUDED.question,
		answer = EXCLUDED.answer,
		model_used = EXCLUDED.model_used,
		response_time = EXCLUDED.response_time,
		relevance = EXCLUDED.relevance,
		relevance_explanation = EXCLUDED.relevance_explanation,
		prompt_tokens = EXCLUDED.prompt_tokens,
		completion_tokens = EXCLUDED.completion_tokens,
		total_tokens = EXCLUDED.total_tokens,
		eval_prompt_tokens = EXCLUDED.eval_prompt_tokens,
		eval_completion_tokens = EXCLUDED.eval_completion_tokens,
		eval_total_tokens = EXCLUDED.eval_total_tokens,
		cost = EXCLUDED.cost,
		timestamp = EXCLUDED.timestamp`

const selectConversation = `
	SELECT question, answer, model_used, response_time, relevance, relevance_explanation,
		prompt_tokens, completion_tokens, total_tokens,
		eval_prompt_tokens, eval_completion_tokens, eval_total_tokens,
		cost::text, timestamp
	FROM conversations WHERE id = $1`

// PostgresRepo stores conversations and feedback in PostgreSQL.
type PostgresRepo struct {
	conn pgConn
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(conn pgConn) *PostgresRepo {
	return &PostgresRepo{conn: conn}
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate creates the tables if they do not exist.
func (r *PostgresRepo) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

// SaveConversation inserts the conversation or replaces an existing row with the same id.
func (r *PostgresRepo) SaveConversation(ctx context.Context, c domconv.Conversation) error {
	rec := c.Record
	_, err := r.conn.Exec(ctx, upsertConversation,
		c.ID,
		c.Question,
		rec.Answer,
		rec.Model,
		rec.ResponseTime.Seconds(),
		string(rec.Relevance.Label),
		rec.Relevance.Explanation,
		rec.Usage.PromptTokens,
		rec.Usage.CompletionTokens,
		rec.Usage.TotalTokens,
		rec.EvalUsage.PromptTokens,
		rec.EvalUsage.CompletionTokens,
		rec.EvalUsage.TotalTokens,
		rec.Cost.String(),
		c.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert conversation %s: %w", c.ID, err)
	}
	return nil
}

// SaveFeedback inserts one feedback row.
func (r *PostgresRepo) SaveFeedback(ctx context.Context, f feedback.Feedback) error {
	_, err := r.conn.Exec(ctx,
		`INSERT INTO feedback (conversation_id, feedback, timestamp) VALUES ($1, $2, $3)`,
		f.ConversationID, f.Value, f.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert feedback for %s: %w", f.ConversationID, err)
	}
	return nil
}

// GetConversation loads a conversation by id or returns domain.ErrNotFound.
func (r *PostgresRepo) GetConversation(ctx context.Context, id string) (domconv.Conversation, error) {
	var (
		question, text, model string
		label, explanation    string
		cost                  string
		secs                  float64
		gen, eval             [3]int
		created               time.Time
	)
	err := r.conn.QueryRow(ctx, selectConversation, id).Scan(
		&question, &text, &model, &secs, &label, &explanation,
		&gen[0], &gen[1], &gen[2], &eval[0], &eval[1], &eval[2],
		&cost, &created,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domconv.Conversation{}, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domconv.Conversation{}, fmt.Errorf("select conversation %s: %w", id, err)
	}

	d, err := decimal.NewFromString(cost)
	if err != nil {
		return domconv.Conversation{}, fmt.Errorf("parse cost %q: %w", cost, err)
	}
	return domconv.Conversation{
		ID:       id,
		Question: question,
		Record: answer.Record{
			Answer:       text,
			Model:        model,
			ResponseTime: time.Duration(secs * float64(time.Second)),
			Relevance:    relevance.Verdict{Label: relevance.Label(label), Explanation: explanation},
			Usage:        usage.New(gen[0], gen[1], gen[2]),
			EvalUsage:    usage.New(eval[0], eval[1], eval[2]),
			Cost:         d,
		},
		CreatedAt: created,
	}, nil
}

// ListFeedback returns the feedback for a conversation, oldest first.
func (r *PostgresRepo) ListFeedback(ctx context.Context, conversationID string) ([]feedback.Feedback, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT feedback, timestamp FROM feedback WHERE conversation_id = $1 ORDER BY id`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("select feedback for %s: %w", conversationID, err)
	}
	defer rows.Close()

	var out []feedback.Feedback
	for rows.Next() {
		f := feedback.Feedback{ConversationID: conversationID}
		if err := rows.Scan(&f.Value, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}
