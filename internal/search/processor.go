package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/dialname/internal/config"
	"github.com/hyperjump/dialname/internal/models"
)

// ErrInvalidQuery is returned for blank or out-of-range queries.
var ErrInvalidQuery = errors.New("invalid query")

// ProcessQuery trims the query text and applies the configured defaults.
func ProcessQuery(query *models.ContactQuery, cfg *config.SearchConfig) error {
	if query == nil {
		return fmt.Errorf("%w: missing query", ErrInvalidQuery)
	}
	query.Query = strings.TrimSpace(query.Query)
	if err := query.Validate(cfg.DefaultLimit, cfg.MaxLimit, cfg.DefaultThreshold); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return nil
}
