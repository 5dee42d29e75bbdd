package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crmforge/salesrag/internal/repo"
	"github.com/crmforge/salesrag/internal/testutil"
)

func TestAggregateSuccessGroups(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "document_embeddings", "interactions", "opportunities", "customers")

	now := time.Now()
	since := now.AddDate(0, 0, -30)

	winner := seedCustomer(t, conn, "Acme", "saas", "mid")
	seedOpportunity(t, conn, winner, "won", 50000)
	seedInteraction(t, conn, winner, "", "demo", "Ran product demo", "", "positive", nil, now.AddDate(0, 0, -1))
	seedInteraction(t, conn, winner, "", "demo", "Second demo", "", "positive", nil, now.AddDate(0, 0, -2))
	seedInteraction(t, conn, winner, "", "call", "Intro call", "", "neutral", nil, now.AddDate(0, 0, -3))

	// A losing demo in the same industry forms a (demo, negative) group that
	// misses the rate cut. It is newer than every winning demo so type-only
	// sampling would surface it.
	loser := seedCustomer(t, conn, "Globex", "saas", "mid")
	seedOpportunity(t, conn, loser, "lost", 40000)
	seedInteraction(t, conn, loser, "", "email", "Cold email", "", "negative", nil, now.AddDate(0, 0, -1))
	seedInteraction(t, conn, loser, "", "demo", "Demo gone wrong", "", "negative", nil, now)

	other := seedCustomer(t, conn, "Initech", "fintech", "mid")
	seedOpportunity(t, conn, other, "won", 60000)
	seedInteraction(t, conn, other, "", "demo", "Other industry demo", "", "positive", nil, now.AddDate(0, 0, -1))

	interactions := repo.NewInteractionRepo(conn)
	groups, err := interactions.AggregateSuccessGroups(context.Background(), "saas", since, 0.6)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	// demo has the higher frequency so it ranks first.
	require.Equal(t, "demo", groups[0].Type)
	require.Equal(t, 2, groups[0].Frequency)
	require.InDelta(t, 1.0, groups[0].AvgSuccessRate, 0.001)
	require.Equal(t, []string{"positive"}, groups[0].Sentiments)
	require.Equal(t, "call", groups[1].Type)

	pairs := []repo.TypeSentiment{{Type: "demo", Sentiment: "positive"}}
	examples, err := interactions.ListPatternExamples(context.Background(), "saas", since, pairs, 2)
	require.NoError(t, err)
	require.Len(t, examples["demo"], 2)
	require.Equal(t, "Ran product demo", examples["demo"][0].Notes)
	for _, ex := range examples["demo"] {
		require.Equal(t, "positive", ex.Sentiment)
	}
}

func TestAggregateObjectionOutcomes(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "document_embeddings", "interactions", "opportunities", "customers")

	now := time.Now()
	topics := []string{"pricing"}

	for i := 0; i < 3; i++ {
		customer := seedCustomer(t, conn, "Won Co", "saas", "mid")
		seedOpportunity(t, conn, customer, "won", 50000)
		seedInteraction(t, conn, customer, "", "call", "Offered volume discount", "Send revised quote", "positive", topics, now)
	}
	for i := 0; i < 2; i++ {
		customer := seedCustomer(t, conn, "Lost Co", "saas", "mid")
		seedOpportunity(t, conn, customer, "lost", 50000)
		seedInteraction(t, conn, customer, "", "call", "Held firm on price", "", "negative", topics, now)
	}
	// Open deals carry no outcome signal and must not show up.
	openCustomer := seedCustomer(t, conn, "Open Co", "saas", "mid")
	seedOpportunity(t, conn, openCustomer, "negotiating", 50000)
	seedInteraction(t, conn, openCustomer, "", "call", "Still discussing price", "", "neutral", topics, now)

	interactions := repo.NewInteractionRepo(conn)
	outcomes, err := interactions.AggregateObjectionOutcomes(context.Background(), "pricing")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	var wonFreq, lostFreq int
	for _, o := range outcomes {
		switch o.Status {
		case "won":
			wonFreq += o.Frequency
		case "lost":
			lostFreq += o.Frequency
		}
	}
	require.Equal(t, 3, wonFreq)
	require.Equal(t, 2, lostFreq)
}

func TestAggregateCompetitorSentiment(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "document_embeddings", "interactions", "opportunities", "customers")

	now := time.Now()
	since := now.AddDate(0, 0, -30)
	customer := seedCustomer(t, conn, "Acme", "saas", "mid")

	first := seedInteraction(t, conn, customer, "", "call", "They mentioned RivalSoft", "", "negative", nil, now.AddDate(0, 0, -1))
	second := seedInteraction(t, conn, customer, "", "call", "RivalSoft came up again", "", "neutral", nil, now.AddDate(0, 0, -2))
	plain := seedInteraction(t, conn, customer, "", "call", "No competitors discussed", "", "positive", nil, now.AddDate(0, 0, -3))

	vec := testVector(map[int]float32{0: 1})
	seedEmbedding(t, conn, "interaction", first, "They mentioned RivalSoft", vec, `{"competitor": "RivalSoft"}`, now)
	seedEmbedding(t, conn, "interaction", second, "RivalSoft came up again", vec, `{"competitor": "RivalSoft"}`, now)
	seedEmbedding(t, conn, "interaction", plain, "No competitors discussed", vec, "", now)

	interactions := repo.NewInteractionRepo(conn)
	sentiments, err := interactions.AggregateCompetitorSentiment(context.Background(), customer, since)
	require.NoError(t, err)
	require.Len(t, sentiments, 2)
	total := 0
	for _, s := range sentiments {
		require.Equal(t, "RivalSoft", s.Competitor)
		total += s.Mentions
	}
	require.Equal(t, 2, total)

	contexts, err := interactions.ListCompetitorContexts(context.Background(), customer, since, 10)
	require.NoError(t, err)
	require.Len(t, contexts, 2)
	require.Equal(t, "They mentioned RivalSoft", contexts[0].Content)
}

func TestListByCustomer(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "document_embeddings", "interactions", "opportunities", "customers")

	now := time.Now()
	customer := seedCustomer(t, conn, "Acme", "saas", "mid")
	seedInteraction(t, conn, customer, "", "call", "older", "", "neutral", nil, now.AddDate(0, 0, -10))
	seedInteraction(t, conn, customer, "", "email", "newer", "", "neutral", nil, now.AddDate(0, 0, -1))
	seedInteraction(t, conn, customer, "", "call", "stale", "", "neutral", nil, now.AddDate(0, 0, -100))

	interactions := repo.NewInteractionRepo(conn)
	items, err := interactions.ListByCustomer(context.Background(), customer, now.AddDate(0, 0, -30), nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "older", items[0].Notes)
	require.Equal(t, "newer", items[1].Notes)

	calls, err := interactions.ListByCustomer(context.Background(), customer, now.AddDate(0, 0, -30), []string{"call"})
	require.NoError(t, err)
	require.Len(t, calls, 1)
	require.Equal(t, "older", calls[0].Notes)
}

func TestListRecentDetailResolvesSalesPerson(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "document_embeddings", "interactions", "opportunities", "sales_people", "customers")

	now := time.Now()
	customer := seedCustomer(t, conn, "Acme", "saas", "mid")
	rep := seedSalesPerson(t, conn, "Jordan Lee")
	seedInteraction(t, conn, customer, rep, "call", "with rep", "", "neutral", nil, now.AddDate(0, 0, -1))
	seedInteraction(t, conn, customer, "", "email", "no rep", "", "neutral", nil, now.AddDate(0, 0, -2))

	interactions := repo.NewInteractionRepo(conn)
	details, err := interactions.ListRecentDetail(context.Background(), customer, 5)
	require.NoError(t, err)
	require.Len(t, details, 2)
	require.Equal(t, "Jordan Lee", details[0].SalesPersonName)
	require.Equal(t, "", details[1].SalesPersonName)
}
