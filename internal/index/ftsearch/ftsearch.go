// Package ftsearch is an index backend on Redis FT.SEARCH: documents are stored
// as hashes, text fields as TEXT and keyword fields as TAG, with query-time
// per-field weights.
package ftsearch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/db"
	"github.com/kailas-cloud/mealmentor/internal/domain/document"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/filter"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/query"
	"github.com/kailas-cloud/mealmentor/internal/index"
)

const defaultBatchSize = 500

// store is the subset of db.Store the backend needs (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Compile-time checks.
var (
	_ index.Builder = (*Builder)(nil)
	_ index.Index   = (*Index)(nil)
)

// Builder rebuilds the FT index and its document hashes from scratch.
type Builder struct {
	store     store
	name      string
	keyPrefix string
	batchSize int
	logger    *zap.Logger
}

// NewBuilder creates an FT.SEARCH index builder. keyPrefix namespaces the
// document hashes (e.g. "mealmentor:recipe:").
func NewBuilder(s store, indexName, keyPrefix string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		store:     s,
		name:      indexName,
		keyPrefix: keyPrefix,
		batchSize: defaultBatchSize,
		logger:    logger,
	}
}

// Index queries a built FT index.
type Index struct {
	store   store
	name    string
	text    []string
	aliases map[string]string // field name -> query alias
	keyword map[string]bool
	size    int
}

// Build drops any previous index (with its hashes), creates the schema and
// writes every document as a hash keyed by its position.
func (b *Builder) Build(ctx context.Context, docs []document.Document, fields index.Fields) (index.Index, error) {
	aliases := make(map[string]string, len(fields.Text)+len(fields.Keyword))
	ib := db.NewIndex(b.name).Prefix(b.keyPrefix)
	for _, f := range fields.Text {
		aliases[f] = Alias(f)
		ib.Text(f, aliases[f])
	}
	keyword := make(map[string]bool, len(fields.Keyword))
	for _, f := range fields.Keyword {
		aliases[f] = Alias(f)
		keyword[f] = true
		ib.Tag(f, aliases[f])
	}
	def, err := ib.Build()
	if err != nil {
		return nil, fmt.Errorf("index definition: %w", err)
	}

	if err := b.store.DropIndex(ctx, b.name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return nil, fmt.Errorf("drop index: %w", err)
	}
	if err := b.store.CreateIndex(ctx, def); err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	for start := 0; start < len(docs); start += b.batchSize {
		end := min(start+b.batchSize, len(docs))
		items := make([]db.HashSetItem, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, db.HashSetItem{
				Key:    b.keyPrefix + strconv.Itoa(i),
				Fields: docs[i].Fields(),
			})
		}
		if err := b.store.HSetMulti(ctx, items); err != nil {
			return nil, fmt.Errorf("write documents %d-%d: %w", start, end-1, err)
		}
	}

	b.logger.Info("ftsearch index built",
		zap.String("index", b.name),
		zap.Int("documents", len(docs)),
		zap.String("schema", def.String()),
	)

	return &Index{
		store:   b.store,
		name:    b.name,
		text:    append([]string(nil), fields.Text...),
		aliases: aliases,
		keyword: keyword,
		size:    len(docs),
	}, nil
}

// Len returns the number of documents written at build time.
func (idx *Index) Len() int { return idx.size }

// Search maps boosts and keyword filters onto field aliases and runs FT.SEARCH.
// Conditions on non-keyword fields are ignored.
func (idx *Index) Search(ctx context.Context, q *query.Query) ([]document.Document, error) {
	weights := make(map[string]float64, len(idx.text))
	for _, f := range idx.text {
		weights[idx.aliases[f]] = q.Boost(f)
	}

	var conds []filter.Condition
	for _, c := range q.Filter().Must() {
		if !idx.keyword[c.Key()] {
			continue
		}
		cond, err := filter.NewMatch(idx.aliases[c.Key()], c.Match())
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	expr, err := filter.NewExpression(conds)
	if err != nil {
		return nil, err
	}

	res, err := idx.store.SearchText(ctx, &db.TextQuery{
		IndexName:    idx.name,
		Text:         q.Text(),
		FieldWeights: weights,
		Filters:      expr,
		Limit:        q.Limit(),
	})
	if err != nil {
		return nil, fmt.Errorf("ft search: %w", err)
	}

	out := make([]document.Document, 0, len(res.Entries))
	for _, e := range res.Entries {
		out = append(out, document.New(e.Fields))
	}
	if len(out) > q.Limit() {
		out = out[:q.Limit()]
	}
	return out, nil
}

// Alias maps a column name to a query-safe identifier: "protein(g)" -> "protein_g".
func Alias(field string) string {
	var sb strings.Builder
	for _, r := range field {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return strings.TrimRight(sb.String(), "_")
}
