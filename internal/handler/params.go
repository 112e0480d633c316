package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studydesk-api/pkg/config"
	appErrors "github.com/noah-isme/studydesk-api/pkg/errors"
)

const weekStartHeader = "X-Week-Start"

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}

// optionalID reads a positive integer query parameter; absent means nil.
func optionalID(c *gin.Context, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be a positive integer")
	}
	return &id, nil
}

// weekStart reads the weekStart query parameter or the X-Week-Start header.
func weekStart(c *gin.Context) (*time.Weekday, error) {
	raw := c.Query("weekStart")
	if raw == "" {
		raw = c.GetHeader(weekStartHeader)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	day, ok := config.ParseWeekday(raw)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart must be a weekday name")
	}
	return &day, nil
}

func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	return nil
}
