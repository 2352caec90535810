package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Resolver maps a user query to a contract address. A query shaped like a
// hex address (40 hex characters, optional 0x prefix) is used directly;
// anything else goes through the upstream name search.
type Resolver struct {
	indexer Indexer
	meta    *gocache.Cache
	logger  *zap.Logger
}

// NewResolver creates a resolver. The metadata cache is optional.
func NewResolver(indexer Indexer, meta *gocache.Cache, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		indexer: indexer,
		meta:    meta,
		logger:  logger,
	}
}

// Resolve turns a free-text query or address into a ResolvedContract.
// Returns ErrNotFound when the name search has no matches.
func (r *Resolver) Resolve(ctx context.Context, query string) (*ResolvedContract, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	if common.IsHexAddress(q) {
		addr := common.HexToAddress(q).Hex()
		name := r.contractName(ctx, addr)
		if name == "" {
			// no recorded name; show the raw query
			name = q
		}
		return &ResolvedContract{Address: addr, DisplayName: name}, nil
	}

	matches, err := r.indexer.SearchContracts(ctx, q, 1)
	if err != nil {
		return nil, fmt.Errorf("contract search failed: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}

	return &ResolvedContract{
		Address:     matches[0].Address,
		DisplayName: matches[0].Name,
	}, nil
}

// contractName looks up the recorded name for an address, consulting the
// metadata cache first. Lookup failures degrade to an empty name.
func (r *Resolver) contractName(ctx context.Context, address string) string {
	key := strings.ToLower(address)
	if r.meta != nil {
		if cached, ok := r.meta.Get(key); ok {
			return cached.(string)
		}
	}

	resp, err := r.indexer.ContractMetadata(ctx, address)
	if err != nil {
		r.logger.Warn("contract metadata lookup failed",
			zap.String("address", address),
			zap.Error(err))
		return ""
	}

	name := resp.ContractMetadata.Name
	if r.meta != nil && name != "" {
		r.meta.SetDefault(key, name)
	}
	return name
}
