package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/crmforge/salesrag/internal/pkg/errcode"
	appErr "github.com/crmforge/salesrag/internal/pkg/errors"
	"github.com/crmforge/salesrag/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalidRange):
		response.Error(c, errcode.ErrInvalidRange, "invalid time range")
	case errors.Is(err, appErr.ErrInvalidQuery):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrEmbeddingUnavailable):
		response.Error(c, errcode.ErrEmbeddingUnavailable, "embedding provider unavailable")
	case errors.Is(err, appErr.ErrStoreUnavailable):
		response.Error(c, errcode.ErrStoreUnavailable, "store unavailable")
	case errors.Is(err, appErr.ErrTimeout):
		response.Error(c, errcode.ErrTimeout, "operation timed out")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}

func parseUUIDParam(c *gin.Context, name string) (string, bool) {
	value := c.Param(name)
	if _, err := uuid.Parse(value); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid "+name)
		return "", false
	}
	return value, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	value := c.Query(name)
	if value == "" {
		return 0, true
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid "+name)
		return 0, false
	}
	return parsed, true
}

func queryFloat(c *gin.Context, name string) (float64, bool) {
	value := c.Query(name)
	if value == "" {
		return 0, true
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid "+name)
		return 0, false
	}
	return parsed, true
}

// parseTime accepts RFC3339 timestamps and bare dates.
func parseTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, errors.New("unrecognized time format")
}
