package search

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/0xvlm/nftsearch-go/internal/constants"
	"github.com/0xvlm/nftsearch-go/upstream"
)

// Config holds the tunables of the search core
type Config struct {
	PageSize        int
	SuggestLimit    int
	SuggestMinChars int
	SuggestDebounce time.Duration
	SessionTTL      time.Duration
	MetadataTTL     time.Duration
	CleanupPeriod   time.Duration
}

// DefaultConfig returns a config with the standard tunables
func DefaultConfig() Config {
	return Config{
		PageSize:        constants.DefaultPageSize,
		SuggestLimit:    constants.DefaultSuggestLimit,
		SuggestMinChars: constants.DefaultSuggestMinChars,
		SuggestDebounce: constants.DefaultSuggestDebounce,
		SessionTTL:      constants.DefaultSessionTTL,
		MetadataTTL:     constants.DefaultMetadataTTL,
		CleanupPeriod:   constants.DefaultMetadataCleanupPeriod,
	}
}

// Validate checks the config for invalid values
func (c Config) Validate() error {
	if c.PageSize < constants.MinPageSize || c.PageSize > constants.MaxPageSize {
		return fmt.Errorf("page size must be between %d and %d, got %d",
			constants.MinPageSize, constants.MaxPageSize, c.PageSize)
	}
	if c.SuggestLimit <= 0 {
		return fmt.Errorf("suggest limit must be positive, got %d", c.SuggestLimit)
	}
	if c.SuggestMinChars <= 0 {
		return fmt.Errorf("suggest min chars must be positive, got %d", c.SuggestMinChars)
	}
	if c.SuggestDebounce <= 0 {
		return fmt.Errorf("suggest debounce must be positive, got %s", c.SuggestDebounce)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// Service is the entry point of the search core. It owns the session
// store, the collection resolver and the shared metadata cache, and
// hands out per-client suggesters.
type Service struct {
	indexer  Indexer
	cfg      Config
	logger   *zap.Logger
	resolver *Resolver
	sessions *gocache.Cache
	events   EventSink
	nextID   atomic.Uint64
}

// NewService creates the search service
func NewService(indexer Indexer, cfg Config, logger *zap.Logger) (*Service, error) {
	if indexer == nil {
		return nil, fmt.Errorf("indexer is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	meta := gocache.New(cfg.MetadataTTL, cfg.CleanupPeriod)

	return &Service{
		indexer:  indexer,
		cfg:      cfg,
		logger:   logger,
		resolver: NewResolver(indexer, meta, logger),
		sessions: gocache.New(cfg.SessionTTL, constants.DefaultSessionCleanupPeriod),
	}, nil
}

// SetEventSink installs the sink that receives session lifecycle events.
// Must be called before any session is created.
func (s *Service) SetEventSink(sink EventSink) {
	s.events = sink
}

// BeginSearch starts a search session. An empty id allocates a fresh
// session; passing an existing id re-searches within that session,
// replacing its accumulation.
func (s *Service) BeginSearch(ctx context.Context, id, query string) (Snapshot, error) {
	var browser *Browser
	if id == "" {
		id = fmt.Sprintf("s%08x", s.nextID.Add(1))
	} else if cached, ok := s.sessions.Get(id); ok {
		browser = cached.(*Browser)
	}
	if browser == nil {
		browser = NewBrowser(id, s.indexer, s.resolver, s.cfg.PageSize, s.events)
	}
	s.sessions.SetDefault(id, browser)

	s.logger.Debug("starting search",
		zap.String("session", id),
		zap.String("query", query))

	return browser.Search(ctx, query)
}

// Continue loads the next page of an existing session
func (s *Service) Continue(ctx context.Context, id string) (Snapshot, error) {
	browser, err := s.browser(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.sessions.SetDefault(id, browser)
	return browser.Continue(ctx)
}

// SessionSnapshot returns the current state of an existing session
func (s *Service) SessionSnapshot(id string) (Snapshot, error) {
	browser, err := s.browser(id)
	if err != nil {
		return Snapshot{}, err
	}
	return browser.Snapshot(), nil
}

// Suggest performs a synchronous suggestion lookup, bypassing the
// debounce. Used by the REST surface where the client debounces.
func (s *Service) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	if len([]rune(query)) < s.cfg.SuggestMinChars {
		return nil, nil
	}
	matches, err := s.indexer.SearchContracts(ctx, query, s.cfg.SuggestLimit)
	if err != nil {
		suggestionsTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("suggestion lookup failed: %w", err)
	}
	suggestionsTotal.WithLabelValues(outcomeOK).Inc()
	return toSuggestions(matches, s.cfg.SuggestLimit), nil
}

// NewSuggester creates a debounced suggester delivering to the given
// callback. One per connected client.
func (s *Service) NewSuggester(deliver func(string, []Suggestion)) *Suggester {
	return NewSuggester(s.indexer, s.cfg.SuggestLimit, s.cfg.SuggestMinChars, s.cfg.SuggestDebounce, deliver)
}

// Collection resolves a query or address to a collection
func (s *Service) Collection(ctx context.Context, query string) (*ResolvedContract, error) {
	return s.resolver.Resolve(ctx, query)
}

// Token fetches the metadata of a single token
func (s *Service) Token(ctx context.Context, contract, tokenID string) (TokenItem, error) {
	raw, err := s.indexer.NFTMetadata(ctx, contract, tokenID)
	if err != nil {
		return TokenItem{}, fmt.Errorf("token metadata lookup failed: %w", err)
	}
	collection := ResolvedContract{Address: contract}
	if raw.Contract.Name != "" {
		collection.DisplayName = raw.Contract.Name
	}
	return normalizeToken(*raw, collection), nil
}

// Tokens fetches one listing page without going through a session.
// Returns the normalized page and the continuation key, empty when the
// listing is exhausted.
func (s *Service) Tokens(ctx context.Context, contract, pageKey string, limit int) ([]TokenItem, string, error) {
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = s.cfg.PageSize
	}
	page, err := s.indexer.NFTsForContract(ctx, contract, pageKey, limit)
	if err != nil {
		return nil, "", fmt.Errorf("listing fetch failed: %w", err)
	}
	collection := ResolvedContract{Address: contract}
	items := make([]TokenItem, 0, len(page.NFTs))
	for _, raw := range page.NFTs {
		items = append(items, normalizeToken(raw, collection))
	}
	return items, page.PageKey, nil
}

// SearchContracts exposes the raw upstream name search for the GraphQL
// surface
func (s *Service) SearchContracts(ctx context.Context, query string, limit int) ([]upstream.ContractMatch, error) {
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = s.cfg.SuggestLimit
	}
	return s.indexer.SearchContracts(ctx, query, limit)
}

func (s *Service) browser(id string) (*Browser, error) {
	cached, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cached.(*Browser), nil
}
