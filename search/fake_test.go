package search

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/0xvlm/nftsearch-go/upstream"
)

// fakeIndexer implements Indexer with pluggable behavior per method.
// Unset methods fail the call.
type fakeIndexer struct {
	searchFn func(ctx context.Context, query string, pageSize int) ([]upstream.ContractMatch, error)
	metaFn   func(ctx context.Context, address string) (*upstream.ContractMetadataResponse, error)
	listFn   func(ctx context.Context, address, pageKey string, limit int) (*upstream.NFTPage, error)
	tokenFn  func(ctx context.Context, address, tokenID string) (*upstream.NFT, error)

	searchCalls atomic.Int64
	metaCalls   atomic.Int64
	listCalls   atomic.Int64
}

func (f *fakeIndexer) SearchContracts(ctx context.Context, query string, pageSize int) ([]upstream.ContractMatch, error) {
	f.searchCalls.Add(1)
	if f.searchFn == nil {
		return nil, fmt.Errorf("unexpected SearchContracts(%q)", query)
	}
	return f.searchFn(ctx, query, pageSize)
}

func (f *fakeIndexer) ContractMetadata(ctx context.Context, address string) (*upstream.ContractMetadataResponse, error) {
	f.metaCalls.Add(1)
	if f.metaFn == nil {
		return nil, fmt.Errorf("unexpected ContractMetadata(%q)", address)
	}
	return f.metaFn(ctx, address)
}

func (f *fakeIndexer) NFTsForContract(ctx context.Context, address, pageKey string, limit int) (*upstream.NFTPage, error) {
	f.listCalls.Add(1)
	if f.listFn == nil {
		return nil, fmt.Errorf("unexpected NFTsForContract(%q, %q)", address, pageKey)
	}
	return f.listFn(ctx, address, pageKey, limit)
}

func (f *fakeIndexer) NFTMetadata(ctx context.Context, address, tokenID string) (*upstream.NFT, error) {
	if f.tokenFn == nil {
		return nil, fmt.Errorf("unexpected NFTMetadata(%q, %q)", address, tokenID)
	}
	return f.tokenFn(ctx, address, tokenID)
}

// token builds a minimal raw NFT record for listing fixtures
func token(id, name string) upstream.NFT {
	return upstream.NFT{
		TokenID: id,
		Name:    name,
		Image:   upstream.NFTImage{OriginalURL: "https://img.example/" + id},
	}
}

// pagedListing returns a listFn serving the given pages in order of the
// page keys they were registered under. The first page key is "".
func pagedListing(pages map[string]*upstream.NFTPage) func(context.Context, string, string, int) (*upstream.NFTPage, error) {
	return func(_ context.Context, _, pageKey string, _ int) (*upstream.NFTPage, error) {
		page, ok := pages[pageKey]
		if !ok {
			return nil, fmt.Errorf("no page registered for key %q", pageKey)
		}
		return page, nil
	}
}
