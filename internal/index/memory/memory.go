// Package memory is an in-process keyword index: per-field TF-IDF vectors scored
// by boosted cosine similarity, with exact-match keyword filtering.
package memory

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/domain/document"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/filter"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/query"
	"github.com/kailas-cloud/mealmentor/internal/index"
)

// Compile-time checks.
var (
	_ index.Builder = (*Builder)(nil)
	_ index.Index   = (*Index)(nil)
)

// Builder builds in-memory indexes.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates an in-memory index builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

type posting struct {
	doc    int
	weight float64
}

// fieldIndex holds the inverted index of one text field. Document vectors are
// L2-normalized, so a dot product with a normalized query vector is the cosine.
type fieldIndex struct {
	idf      map[string]float64
	postings map[string][]posting
}

// Index is immutable after Build and holds no locks.
type Index struct {
	docs    []document.Document
	text    []string
	fields  map[string]*fieldIndex
	keyword map[string]bool
}

// Build tokenizes every text field and computes smoothed IDF weights:
// idf(t) = ln((1+n)/(1+df(t))) + 1.
func (b *Builder) Build(_ context.Context, docs []document.Document, fields index.Fields) (index.Index, error) {
	idx := &Index{
		docs:    docs,
		text:    append([]string(nil), fields.Text...),
		fields:  make(map[string]*fieldIndex, len(fields.Text)),
		keyword: make(map[string]bool, len(fields.Keyword)),
	}
	for _, k := range fields.Keyword {
		idx.keyword[k] = true
	}

	n := float64(len(docs))
	for _, field := range fields.Text {
		counts := make([]map[string]int, len(docs))
		df := make(map[string]int)
		for i, d := range docs {
			tf := make(map[string]int)
			for _, tok := range tokenize(d.Value(field)) {
				tf[tok]++
			}
			for tok := range tf {
				df[tok]++
			}
			counts[i] = tf
		}

		fi := &fieldIndex{
			idf:      make(map[string]float64, len(df)),
			postings: make(map[string][]posting, len(df)),
		}
		for tok, c := range df {
			fi.idf[tok] = math.Log((1+n)/(1+float64(c))) + 1
		}
		for i, tf := range counts {
			var norm float64
			for tok, c := range tf {
				w := float64(c) * fi.idf[tok]
				norm += w * w
			}
			if norm == 0 {
				continue
			}
			norm = math.Sqrt(norm)
			for tok, c := range tf {
				fi.postings[tok] = append(fi.postings[tok], posting{doc: i, weight: float64(c) * fi.idf[tok] / norm})
			}
		}
		idx.fields[field] = fi
	}

	b.logger.Info("memory index built",
		zap.Int("documents", len(docs)),
		zap.Strings("text_fields", fields.Text),
		zap.Strings("keyword_fields", fields.Keyword),
	)
	return idx, nil
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int { return len(idx.docs) }

// Search scores every document as the sum over text fields of boost * cosine,
// zeroes documents failing the keyword filter, and returns at most Limit
// documents with a positive score, best first. Equal scores keep insertion order.
func (idx *Index) Search(ctx context.Context, q *query.Query) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := tokenize(q.Text())
	scores := make([]float64, len(idx.docs))
	for _, field := range idx.text {
		boost := q.Boost(field)
		if boost == 0 {
			continue
		}
		fi := idx.fields[field]
		qv, ok := fi.queryVector(tokens)
		if !ok {
			continue
		}
		for tok, qw := range qv {
			for _, p := range fi.postings[tok] {
				scores[p.doc] += boost * qw * p.weight
			}
		}
	}

	f := q.Filter()
	hits := make([]int, 0, q.Limit())
	for i, s := range scores {
		if s <= 0 {
			continue
		}
		if !f.IsEmpty() && !idx.matches(i, f) {
			continue
		}
		hits = append(hits, i)
	}
	sort.SliceStable(hits, func(a, b int) bool { return scores[hits[a]] > scores[hits[b]] })
	if len(hits) > q.Limit() {
		hits = hits[:q.Limit()]
	}

	out := make([]document.Document, len(hits))
	for i, h := range hits {
		out[i] = idx.docs[h]
	}
	return out, nil
}

// matches applies the conditions on declared keyword fields; conditions on any
// other field are ignored.
func (idx *Index) matches(doc int, f filter.Expression) bool {
	for _, c := range f.Must() {
		if !idx.keyword[c.Key()] {
			continue
		}
		if v, ok := idx.docs[doc].Get(c.Key()); !ok || v != c.Match() {
			return false
		}
	}
	return true
}

// queryVector returns the normalized TF-IDF vector of the query restricted to
// the field vocabulary; false when no token is known.
func (fi *fieldIndex) queryVector(tokens []string) (map[string]float64, bool) {
	tf := make(map[string]int)
	for _, t := range tokens {
		if _, ok := fi.idf[t]; ok {
			tf[t]++
		}
	}
	if len(tf) == 0 {
		return nil, false
	}
	vec := make(map[string]float64, len(tf))
	var norm float64
	for t, c := range tf {
		w := float64(c) * fi.idf[t]
		vec[t] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for t := range vec {
		vec[t] /= norm
	}
	return vec, true
}
