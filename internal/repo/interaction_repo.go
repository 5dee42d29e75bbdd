package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/lib/pq"

	"github.com/crmforge/salesrag/internal/model"
	"github.com/crmforge/salesrag/internal/pkg/dbutil"
)

type InteractionRepo struct {
	db *sql.DB
}

func NewInteractionRepo(db *sql.DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

// SuccessGroup is one mined (type, sentiment) group rolled up to its
// interaction type, already aggregated by the store. Sentiments lists the
// sentiment values of the groups that survived the rate cut; example
// sampling is restricted to those pairs.
type SuccessGroup struct {
	Type           string
	Frequency      int
	AvgSuccessRate float64
	Sentiments     []string
}

// TypeSentiment identifies one retained mined group.
type TypeSentiment struct {
	Type      string
	Sentiment string
}

// ObjectionOutcome is one grouped objection-handling row joined to a
// terminal opportunity outcome.
type ObjectionOutcome struct {
	Notes     string
	NextSteps string
	Sentiment string
	Status    string
	Frequency int
}

// CompetitorSentiment is the per-(competitor, sentiment) mention count.
type CompetitorSentiment struct {
	Competitor string
	Sentiment  string
	Mentions   int
}

// CompetitorContext is one mention occurrence with its surrounding text.
type CompetitorContext struct {
	Competitor string
	Content    string
	Sentiment  string
	CreatedAt  time.Time
}

// AggregateSuccessGroups joins interactions to opportunities of the same
// customer within an industry and window, groups by (type, sentiment) at the
// store, keeps groups at or above minRate, and rolls the survivors up per
// type. Grouping and filtering stay in SQL so wide windows never stream raw
// rows into the engine.
func (r *InteractionRepo) AggregateSuccessGroups(ctx context.Context, industry string, since time.Time, minRate float64) ([]SuccessGroup, error) {
	const stmt = `
		WITH grouped AS (
			SELECT
				i.type,
				i.sentiment,
				COUNT(*) AS frequency,
				AVG(CASE WHEN o.status = 'won' THEN 1.0 ELSE 0.0 END) AS success_rate
			FROM interactions i
			JOIN opportunities o ON o.customer_id = i.customer_id
			JOIN customers c ON c.id = i.customer_id
			WHERE c.industry = $1 AND i.created_at >= $2
			GROUP BY i.type, i.sentiment
			HAVING AVG(CASE WHEN o.status = 'won' THEN 1.0 ELSE 0.0 END) >= $3
		)
		SELECT type, SUM(frequency)::bigint, AVG(success_rate), array_agg(sentiment ORDER BY sentiment)
		FROM grouped
		GROUP BY type
		ORDER BY SUM(frequency) DESC, type ASC
	`
	rows, err := r.db.QueryContext(ctx, stmt, industry, since, minRate)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()

	var groups []SuccessGroup
	for rows.Next() {
		var g SuccessGroup
		var sentiments pq.StringArray
		if err := rows.Scan(&g.Type, &g.Frequency, &g.AvgSuccessRate, &sentiments); err != nil {
			return nil, err
		}
		g.Sentiments = sentiments
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return groups, nil
}

// ListPatternExamples samples up to perType recent interactions within the
// cohort, keyed by type. Only the given (type, sentiment) groups are sampled
// so examples never come from groups that fell below the rate cut.
func (r *InteractionRepo) ListPatternExamples(ctx context.Context, industry string, since time.Time, groups []TypeSentiment, perType int) (map[string][]model.PatternExample, error) {
	if len(groups) == 0 || perType <= 0 {
		return map[string][]model.PatternExample{}, nil
	}
	tuples := make([]string, len(groups))
	args := []interface{}{industry, since}
	for i, g := range groups {
		tuples[i] = "(?, ?)"
		args = append(args, g.Type, g.Sentiment)
	}
	args = append(args, perType)
	stmt := fmt.Sprintf(`
		SELECT type, notes, sentiment, topics, created_at
		FROM (
			SELECT
				i.type, i.notes, i.sentiment, i.topics, i.created_at,
				ROW_NUMBER() OVER (PARTITION BY i.type ORDER BY i.created_at DESC) AS rn
			FROM interactions i
			JOIN customers c ON c.id = i.customer_id
			WHERE c.industry = ? AND i.created_at >= ? AND (i.type, i.sentiment) IN (%s)
		) sampled
		WHERE rn <= ?
	`, strings.Join(tuples, ", "))
	stmt, args = dbutil.Finalize(stmt, args)
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()

	examples := make(map[string][]model.PatternExample, len(groups))
	for rows.Next() {
		var typ string
		var ex model.PatternExample
		var topics pq.StringArray
		if err := rows.Scan(&typ, &ex.Notes, &ex.Sentiment, &topics, &ex.CreatedAt); err != nil {
			return nil, err
		}
		ex.Topics = topics
		examples[typ] = append(examples[typ], ex)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return examples, nil
}

// AggregateObjectionOutcomes groups interactions tagged with the objection
// topic by response shape and terminal outcome. In-flight opportunities are
// excluded; they carry no success signal yet.
func (r *InteractionRepo) AggregateObjectionOutcomes(ctx context.Context, objectionType string) ([]ObjectionOutcome, error) {
	const stmt = `
		SELECT i.notes, i.next_steps, i.sentiment, o.status, COUNT(*) AS frequency
		FROM interactions i
		JOIN opportunities o ON o.customer_id = i.customer_id
		WHERE $1 = ANY(i.topics) AND o.status IN ('won', 'lost')
		GROUP BY i.notes, i.next_steps, i.sentiment, o.status
		ORDER BY frequency DESC, i.notes ASC
	`
	rows, err := r.db.QueryContext(ctx, stmt, objectionType)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()

	var outcomes []ObjectionOutcome
	for rows.Next() {
		var o ObjectionOutcome
		if err := rows.Scan(&o.Notes, &o.NextSteps, &o.Sentiment, &o.Status, &o.Frequency); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return outcomes, nil
}

// AggregateCompetitorSentiment counts competitor mentions per sentiment for
// one customer's interactions inside the window. Mentions come from the
// document index metadata written at ingestion time.
func (r *InteractionRepo) AggregateCompetitorSentiment(ctx context.Context, customerID string, since time.Time) ([]CompetitorSentiment, error) {
	const stmt = `
		SELECT e.metadata->>'competitor' AS competitor, i.sentiment, COUNT(*) AS mentions
		FROM document_embeddings e
		JOIN interactions i ON i.id = e.source_id AND e.source_type = 'interaction'
		WHERE i.customer_id = $1
			AND i.created_at >= $2
			AND e.metadata ? 'competitor'
		GROUP BY competitor, i.sentiment
	`
	rows, err := r.db.QueryContext(ctx, stmt, customerID, since)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()

	var result []CompetitorSentiment
	for rows.Next() {
		var cs CompetitorSentiment
		if err := rows.Scan(&cs.Competitor, &cs.Sentiment, &cs.Mentions); err != nil {
			return nil, err
		}
		result = append(result, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return result, nil
}

// ListCompetitorContexts returns the most recent mention occurrences for one
// customer, newest first, bounded by limit.
func (r *InteractionRepo) ListCompetitorContexts(ctx context.Context, customerID string, since time.Time, limit int) ([]CompetitorContext, error) {
	const stmt = `
		SELECT e.metadata->>'competitor' AS competitor, e.content, i.sentiment, i.created_at
		FROM document_embeddings e
		JOIN interactions i ON i.id = e.source_id AND e.source_type = 'interaction'
		WHERE i.customer_id = $1
			AND i.created_at >= $2
			AND e.metadata ? 'competitor'
		ORDER BY i.created_at DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, stmt, customerID, since, limit)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()

	var contexts []CompetitorContext
	for rows.Next() {
		var c CompetitorContext
		if err := rows.Scan(&c.Competitor, &c.Content, &c.Sentiment, &c.CreatedAt); err != nil {
			return nil, err
		}
		contexts = append(contexts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return contexts, nil
}

// ListByCustomer lists a customer's interactions since the cutoff in
// chronological order, optionally restricted to a type set.
func (r *InteractionRepo) ListByCustomer(ctx context.Context, customerID string, since time.Time, types []string) ([]model.Interaction, error) {
	where := map[string]interface{}{
		"customer_id":   customerID,
		"created_at >=": since,
		"_orderby":      "created_at asc",
	}
	if len(types) > 0 {
		where["type in"] = types
	}
	stmt, args, err := builder.BuildSelect("interactions",
		where,
		[]string{"id", "customer_id", "sales_person_id", "type", "notes", "next_steps", "sentiment", "topics", "created_at"})
	if err != nil {
		return nil, err
	}
	stmt, args = dbutil.Finalize(stmt, args)
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()
	return scanInteractions(rows)
}

// ListRecentDetail returns the latest interactions with the sales person
// name resolved, newest first.
func (r *InteractionRepo) ListRecentDetail(ctx context.Context, customerID string, limit int) ([]model.InteractionDetail, error) {
	const stmt = `
		SELECT
			i.id, i.customer_id, i.sales_person_id, i.type, i.notes, i.next_steps,
			i.sentiment, i.topics, i.created_at, COALESCE(sp.name, '')
		FROM interactions i
		LEFT JOIN sales_people sp ON sp.id = i.sales_person_id
		WHERE i.customer_id = $1
		ORDER BY i.created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, stmt, customerID, limit)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()

	var details []model.InteractionDetail
	for rows.Next() {
		var d model.InteractionDetail
		var salesPersonID sql.NullString
		var topics pq.StringArray
		if err := rows.Scan(&d.ID, &d.CustomerID, &salesPersonID, &d.Type, &d.Notes, &d.NextSteps,
			&d.Sentiment, &topics, &d.CreatedAt, &d.SalesPersonName); err != nil {
			return nil, err
		}
		d.SalesPersonID = salesPersonID.String
		d.Topics = topics
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return details, nil
}

func scanInteractions(rows *sql.Rows) ([]model.Interaction, error) {
	var items []model.Interaction
	for rows.Next() {
		var it model.Interaction
		var salesPersonID sql.NullString
		var topics pq.StringArray
		if err := rows.Scan(&it.ID, &it.CustomerID, &salesPersonID, &it.Type, &it.Notes, &it.NextSteps,
			&it.Sentiment, &topics, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.SalesPersonID = salesPersonID.String
		it.Topics = topics
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return items, nil
}
