package search

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/0xvlm/nftsearch-go/upstream"
)

// Indexer is the slice of the upstream client the search core consumes
type Indexer interface {
	SearchContracts(ctx context.Context, query string, pageSize int) ([]upstream.ContractMatch, error)
	ContractMetadata(ctx context.Context, address string) (*upstream.ContractMetadataResponse, error)
	NFTsForContract(ctx context.Context, address, pageKey string, limit int) (*upstream.NFTPage, error)
	NFTMetadata(ctx context.Context, address, tokenID string) (*upstream.NFT, error)
}

// ResolvedContract is the target of one search: a contract address plus the
// display name shown for it. Immutable for the lifetime of a session.
type ResolvedContract struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName"`
}

// TokenItem is one normalized token in a session's accumulation.
// TokenID is the uniqueness key within a session.
type TokenItem struct {
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenId"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ImageURL        string `json:"imageUrl"`
}

// Suggestion is one entry of the collection-name suggestion list
type Suggestion struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Snapshot is a point-in-time view of a session
type Snapshot struct {
	SessionID  string           `json:"sessionId"`
	Collection ResolvedContract `json:"collection"`
	Items      []TokenItem      `json:"items"`
	PageKey    string           `json:"pageKey,omitempty"`
	Exhausted  bool             `json:"exhausted"`
	NotFound   bool             `json:"notFound"`
	InFlight   bool             `json:"inFlight"`
}

// normalizeToken converts a raw upstream record into a TokenItem, applying
// the image and title fallbacks.
func normalizeToken(raw upstream.NFT, collection ResolvedContract) TokenItem {
	item := TokenItem{
		ContractAddress: raw.Contract.Address,
		TokenID:         raw.TokenID,
		Title:           raw.Name,
		Description:     raw.Description,
	}
	if item.ContractAddress == "" {
		item.ContractAddress = collection.Address
	}

	// Image preference: original, thumbnail, cached, raw
	switch {
	case raw.Image.OriginalURL != "":
		item.ImageURL = raw.Image.OriginalURL
	case raw.Image.ThumbnailURL != "":
		item.ImageURL = raw.Image.ThumbnailURL
	case raw.Image.CachedURL != "":
		item.ImageURL = raw.Image.CachedURL
	default:
		item.ImageURL = raw.Image.RawURL
	}

	if item.Title == "" {
		item.Title = fmt.Sprintf("%s #%s", collection.DisplayName, raw.TokenID)
	}

	return item
}

// parseTokenID parses a decimal or 0x-hex token id
func parseTokenID(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, ok := new(big.Int).SetString(s[2:], 16)
		return n, ok
	}
	n, ok := new(big.Int).SetString(s, 10)
	return n, ok
}

// tokenIDLess orders token ids numerically when both parse; numeric ids sort
// before unparsable ones, which fall back to lexicographic order.
func tokenIDLess(a, b string) bool {
	an, aok := parseTokenID(a)
	bn, bok := parseTokenID(b)
	switch {
	case aok && bok:
		if c := an.Cmp(bn); c != 0 {
			return c < 0
		}
		return a < b
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}
