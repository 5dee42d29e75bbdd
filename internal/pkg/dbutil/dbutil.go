package dbutil

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	appErr "github.com/crmforge/salesrag/internal/pkg/errors"
)

// Finalize rebinds a gendry/sqlx query with ?-style placeholders to the
// $n form postgres expects.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}

// ClassifyErr maps driver-level failures onto the engine error taxonomy so
// callers can decide on retry without inspecting pq internals. Errors that
// are neither timeouts nor connection-class failures pass through unchanged.
func ClassifyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: store query exceeded deadline", appErr.ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", appErr.ErrStoreUnavailable, err)
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		// Class 08 is connection exception, 57P0x are shutdown/crash states.
		if pgErr.Code.Class() == "08" || pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03" {
			return fmt.Errorf("%w: %v", appErr.ErrStoreUnavailable, err)
		}
	}
	return err
}
