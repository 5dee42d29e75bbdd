package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crmforge/salesrag/internal/query"
)

func TestPredicateEmptyRendersTautology(t *testing.T) {
	where, args := query.NewPredicate().SQL("$1", 2)
	require.Equal(t, "1 = 1", where)
	require.Empty(t, args)
}

func TestPredicateRendersConjunctionInOrder(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p := query.NewPredicate().
		Equals("source_id", "cust-1").
		Between("created_at", from, to).
		In("source_type", []string{"interaction", "opportunity"}).
		Similarity(0.7)

	where, args := p.SQL("$1", 2)
	require.Equal(t,
		"source_id = $2 AND created_at BETWEEN $3 AND $4 AND source_type = ANY($5) AND 1 - (embedding <=> $1) >= $6",
		where,
	)
	require.Len(t, args, 5)
	require.Equal(t, "cust-1", args[0])
	require.Equal(t, from, args[1])
	require.Equal(t, to, args[2])
	require.Equal(t, 0.7, args[4])
}

func TestPredicateSimilarityRendersLast(t *testing.T) {
	p := query.NewPredicate().
		Similarity(0.5).
		Equals("source_id", "cust-1")
	where, args := p.SQL("$1", 2)
	require.Equal(t, "source_id = $2 AND 1 - (embedding <=> $1) >= $3", where)
	require.Len(t, args, 2)
	require.Equal(t, "cust-1", args[0])
	require.Equal(t, 0.5, args[1])
}
