// Package query models store predicates as typed clauses instead of ad hoc
// SQL fragments. A predicate is always a conjunction; the store translation
// happens once, at the repo boundary.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

type Clause interface {
	isClause()
}

type EqualsClause struct {
	Column string
	Value  interface{}
}

type RangeClause struct {
	Column string
	From   time.Time
	To     time.Time
}

type SetMembershipClause struct {
	Column string
	Values []string
}

type SimilarityThresholdClause struct {
	Min float64
}

func (EqualsClause) isClause()              {}
func (RangeClause) isClause()               {}
func (SetMembershipClause) isClause()       {}
func (SimilarityThresholdClause) isClause() {}

type Predicate struct {
	clauses []Clause
}

func NewPredicate() *Predicate {
	return &Predicate{}
}

func (p *Predicate) Equals(column string, value interface{}) *Predicate {
	p.clauses = append(p.clauses, EqualsClause{Column: column, Value: value})
	return p
}

func (p *Predicate) Between(column string, from, to time.Time) *Predicate {
	p.clauses = append(p.clauses, RangeClause{Column: column, From: from, To: to})
	return p
}

func (p *Predicate) In(column string, values []string) *Predicate {
	p.clauses = append(p.clauses, SetMembershipClause{Column: column, Values: values})
	return p
}

func (p *Predicate) Similarity(min float64) *Predicate {
	p.clauses = append(p.clauses, SimilarityThresholdClause{Min: min})
	return p
}

func (p *Predicate) Clauses() []Clause {
	return p.clauses
}

// SQL renders the conjunction as a postgres WHERE body. vectorPlaceholder is
// the already-bound placeholder of the query vector; argIndex is the next
// free placeholder number. Structured clauses render before the vector
// comparison so the store can cut the candidate set cheaply first.
func (p *Predicate) SQL(vectorPlaceholder string, argIndex int) (string, []interface{}) {
	var conds []string
	var args []interface{}
	next := func() string {
		ph := fmt.Sprintf("$%d", argIndex)
		argIndex++
		return ph
	}
	var similarity []SimilarityThresholdClause
	for _, c := range p.clauses {
		switch c := c.(type) {
		case EqualsClause:
			conds = append(conds, c.Column+" = "+next())
			args = append(args, c.Value)
		case RangeClause:
			conds = append(conds, c.Column+" BETWEEN "+next()+" AND "+next())
			args = append(args, c.From, c.To)
		case SetMembershipClause:
			conds = append(conds, c.Column+" = ANY("+next()+")")
			args = append(args, pq.Array(c.Values))
		case SimilarityThresholdClause:
			similarity = append(similarity, c)
		}
	}
	for _, c := range similarity {
		conds = append(conds, "1 - (embedding <=> "+vectorPlaceholder+") >= "+next())
		args = append(args, c.Min)
	}
	if len(conds) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(conds, " AND "), args
}
