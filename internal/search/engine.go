// Package search resolves spoken or typed names against the stored contacts.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/hyperjump/dialname/internal/config"
	"github.com/hyperjump/dialname/internal/contacts"
	"github.com/hyperjump/dialname/internal/keyword"
	"github.com/hyperjump/dialname/internal/matcher"
	"github.com/hyperjump/dialname/internal/models"
	"github.com/hyperjump/dialname/internal/storage"
)

const (
	recordsKey   = "records"
	directoryKey = "directory"
)

// Engine matches queries against the contact directory.
type Engine struct {
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	spell        *keyword.SpellChecker
	config       *config.SearchConfig
	cache        *gocache.Cache
	logger       *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSpellChecker enables "did you mean" suggestions for queries without matches.
func WithSpellChecker(sc *keyword.SpellChecker) EngineOption {
	return func(e *Engine) { e.spell = sc }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewSpellChecker builds the suggestion spell checker for dict from the
// search settings.
func NewSpellChecker(dict keyword.TermDictionary, cfg *config.SearchConfig) *keyword.SpellChecker {
	return keyword.NewSpellChecker(dict,
		keyword.WithMaxDistance(cfg.SuggestionMaxDistance),
		keyword.WithMinFrequency(cfg.SuggestionMinFrequency),
		keyword.WithMaxSuggestions(cfg.Suggestions),
	)
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(store storage.Storage, keywordIndex keyword.KeywordIndex, cfg *config.SearchConfig, opts ...EngineOption) *Engine {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	e := &Engine{
		storage:      store,
		keywordIndex: keywordIndex,
		config:       cfg,
		cache:        gocache.New(ttl, 2*ttl),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invalidate drops the cached directory and spelling dictionary. Call it
// after contacts change.
func (e *Engine) Invalidate() {
	e.cache.Flush()
	if e.spell != nil {
		e.spell.Invalidate()
	}
}

func (e *Engine) records(ctx context.Context) ([]*models.ContactRecord, error) {
	if v, ok := e.cache.Get(recordsKey); ok {
		return v.([]*models.ContactRecord), nil
	}
	recs, err := e.storage.AllContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	e.cache.SetDefault(recordsKey, recs)
	return recs, nil
}

func (e *Engine) directory(ctx context.Context) (models.Directory, error) {
	if v, ok := e.cache.Get(directoryKey); ok {
		return v.(models.Directory), nil
	}
	recs, err := e.records(ctx)
	if err != nil {
		return nil, err
	}
	dir := contacts.BuildDirectory(recs)
	e.cache.SetDefault(directoryKey, dir)
	return dir, nil
}

// Search scores every directory entry against query and returns the best
// matches, grouped by display name.
func (e *Engine) Search(ctx context.Context, query *models.ContactQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := ProcessQuery(query, e.config); err != nil {
		return nil, err
	}
	dir, err := e.directory(ctx)
	if err != nil {
		return nil, err
	}

	matches := matcher.FindGroupedMatches(query.Query, dir,
		matcher.WithThreshold(*query.Threshold),
		matcher.WithMaxResults(query.Limit))
	if matches == nil {
		matches = []models.MatchResult{}
	}
	response := &models.SearchResponse{
		Matches: matches,
		Total:   len(matches),
		Query:   query.Query,
	}
	if alt, ok := matcher.AlternateQuery(query.Query); ok {
		response.AlternateQuery = alt
	}
	if len(matches) == 0 && e.spell != nil {
		response.Suggestions = e.spell.GetTopSuggestions(query.Query, e.config.Suggestions)
	}
	response.QueryTime = time.Since(startTime).Milliseconds()

	if e.logger != nil {
		e.logger.Debug("search",
			zap.String("query", query.Query),
			zap.Int("contacts", len(dir)),
			zap.Int("matches", len(matches)),
			zap.Int64("query_time_ms", response.QueryTime))
	}
	return response, nil
}

// Lookup finds the contact name for number. When nothing matches, DisplayName
// holds the formatted number.
func (e *Engine) Lookup(ctx context.Context, number string) (*models.LookupResponse, error) {
	if contacts.NormalizeNumber(number) == "" {
		return nil, fmt.Errorf("%w: number must contain digits", ErrInvalidQuery)
	}
	response := &models.LookupResponse{Number: number}

	exact, err := e.storage.FindByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to look up number: %w", err)
	}
	if len(exact) > 0 {
		response.Name, response.Found = exact[0].DisplayName, true
	} else {
		recs, err := e.records(ctx)
		if err != nil {
			return nil, err
		}
		response.Name, response.Found = contacts.LookupName(recs, number)
	}

	if response.Found {
		response.DisplayName = response.Name
	} else {
		response.DisplayName = contacts.FormatNumber(number)
	}
	return response, nil
}

// FindContacts runs a keyword search over names, labels and numbers and
// returns the matching stored contacts in rank order.
func (e *Engine) FindContacts(ctx context.Context, q string, limit int) ([]*models.ContactRecord, error) {
	if limit <= 0 {
		limit = e.config.DefaultLimit
	}
	if e.config.MaxLimit > 0 && limit > e.config.MaxLimit {
		limit = e.config.MaxLimit
	}
	hits, err := e.keywordIndex.Search(ctx, q, limit, &keyword.SearchOptions{
		NameBoost:    e.config.NameBoost,
		FuzzyEnabled: true,
	})
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	out := make([]*models.ContactRecord, 0, len(hits))
	for _, h := range hits {
		rec, err := e.storage.GetContact(ctx, h.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
