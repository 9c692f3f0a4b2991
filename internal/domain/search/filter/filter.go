package filter

import (
	"fmt"
	"sort"
)

// MaxConditions is the maximum number of conditions per expression.
const MaxConditions = 32

// Expression is a conjunction of exact-match conditions on keyword fields.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must []Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{must: must}, nil
}

// FromMap builds an Expression from field -> value pairs, ordered by field name.
func FromMap(m map[string]string) (Expression, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]Condition, 0, len(keys))
	for _, k := range keys {
		c, err := NewMatch(k, m[k])
		if err != nil {
			return Expression{}, err
		}
		conds = append(conds, c)
	}
	return NewExpression(conds)
}

// Must returns the conditions every result has to satisfy.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Matches reports whether lookup satisfies every condition.
func (e Expression) Matches(lookup func(field string) (string, bool)) bool {
	for _, c := range e.must {
		v, ok := lookup(c.key)
		if !ok || v != c.match {
			return false
		}
	}
	return true
}

// Condition is a single exact-match clause.
type Condition struct {
	key   string
	match string
}

// NewMatch creates an exact match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }
