package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"

	"github.com/crmforge/salesrag/internal/model"
	"github.com/crmforge/salesrag/internal/pkg/dbutil"
	appErr "github.com/crmforge/salesrag/internal/pkg/errors"
)

type OpportunityRepo struct {
	db *sql.DB
}

func NewOpportunityRepo(db *sql.DB) *OpportunityRepo {
	return &OpportunityRepo{db: db}
}

// GetContext loads an opportunity joined with its customer profile.
func (r *OpportunityRepo) GetContext(ctx context.Context, id string) (*model.OpportunityContext, error) {
	const stmt = `
		SELECT
			o.id, o.customer_id, o.sales_person_id, o.status, o.value, o.loss_reason, o.created_at,
			c.industry, c.size
		FROM opportunities o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`
	var oc model.OpportunityContext
	var salesPersonID, lossReason sql.NullString
	err := r.db.QueryRowContext(ctx, stmt, id).Scan(
		&oc.ID, &oc.CustomerID, &salesPersonID, &oc.Status, &oc.Value, &lossReason, &oc.CreatedAt,
		&oc.Industry, &oc.CompanySize,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: opportunity %s", appErr.ErrNotFound, id)
		}
		return nil, dbutil.ClassifyErr(err)
	}
	oc.SalesPersonID = salesPersonID.String
	if lossReason.Valid {
		oc.LossReason = &lossReason.String
	}
	return &oc, nil
}

// ListWonNextSteps collects distinct recorded next-steps from won deals in
// the [lo, hi] value band, excluding the opportunity being advised on.
func (r *OpportunityRepo) ListWonNextSteps(ctx context.Context, excludeID string, lo, hi float64, limit int) ([]string, error) {
	const stmt = `
		SELECT DISTINCT i.next_steps
		FROM opportunities o
		JOIN interactions i ON i.customer_id = o.customer_id
		WHERE o.status = 'won'
			AND o.id <> $1
			AND o.value BETWEEN $2 AND $3
			AND i.next_steps <> ''
		ORDER BY i.next_steps ASC
		LIMIT $4
	`
	rows, err := r.db.QueryContext(ctx, stmt, excludeID, lo, hi, limit)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()

	var steps []string
	for rows.Next() {
		var step string
		if err := rows.Scan(&step); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return steps, nil
}

// ListActiveByCustomer lists a customer's non-terminal opportunities,
// newest first.
func (r *OpportunityRepo) ListActiveByCustomer(ctx context.Context, customerID string) ([]model.Opportunity, error) {
	where := map[string]interface{}{
		"customer_id":   customerID,
		"status not in": []string{model.OpportunityStatusWon, model.OpportunityStatusLost},
		"_orderby":      "created_at desc",
	}
	stmt, args, err := builder.BuildSelect("opportunities",
		where,
		[]string{"id", "customer_id", "sales_person_id", "status", "value", "loss_reason", "created_at"})
	if err != nil {
		return nil, err
	}
	stmt, args = dbutil.Finalize(stmt, args)
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()

	var items []model.Opportunity
	for rows.Next() {
		var o model.Opportunity
		var salesPersonID, lossReason sql.NullString
		if err := rows.Scan(&o.ID, &o.CustomerID, &salesPersonID, &o.Status, &o.Value, &lossReason, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.SalesPersonID = salesPersonID.String
		if lossReason.Valid {
			o.LossReason = &lossReason.String
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return items, nil
}
