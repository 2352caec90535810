package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)
	return client
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)

	_, err = NewClient(&Config{})
	assert.Error(t, err)

	client, err := NewClient(&Config{BaseURL: "https://example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", client.baseURL)
}

func TestSearchContracts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/searchContractMetadata", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "bored ape", req["query"])
		assert.Equal(t, float64(1), req["page"])
		assert.Equal(t, float64(5), req["pageSize"])

		w.Write([]byte(`{"contracts":[
			{"name":"Bored Ape Yacht Club","address":"0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D","openSeaMetadata":{"imageUrl":"https://img.example/bayc.png"}},
			{"name":"Bored Ape Kennel Club","address":"0xba30E5F9Bb24caa003E9f2f0497Ad287FDF95623","openSeaMetadata":{}}
		]}`))
	})

	matches, err := client.SearchContracts(context.Background(), "bored ape", 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Bored Ape Yacht Club", matches[0].Name)
	assert.Equal(t, "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D", matches[0].Address)
	assert.Equal(t, "https://img.example/bayc.png", matches[0].OpenSeaMetadata.ImageURL)
}

func TestSearchContractsEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty query")
	})

	_, err := client.SearchContracts(context.Background(), "", 5)
	assert.Error(t, err)
}

func TestContractMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/getContractMetadata", r.URL.Path)
		assert.Equal(t, "0xBC4C", r.URL.Query().Get("contractAddress"))

		w.Write([]byte(`{"address":"0xBC4C","contractMetadata":{"name":"Bored Ape Yacht Club","symbol":"BAYC","tokenType":"ERC721"}}`))
	})

	meta, err := client.ContractMetadata(context.Background(), "0xBC4C")
	require.NoError(t, err)
	assert.Equal(t, "Bored Ape Yacht Club", meta.ContractMetadata.Name)
	assert.Equal(t, "ERC721", meta.ContractMetadata.TokenType)
}

func TestNFTsForContract(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getNFTsForContract", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("withMetadata"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "cursor-1", r.URL.Query().Get("pageKey"))

		w.Write([]byte(`{"nfts":[
			{"contract":{"address":"0xabc"},"tokenId":"1","name":"Token #1","image":{"thumbnailUrl":"https://img.example/1-thumb.png"}},
			{"contract":{"address":"0xabc"},"tokenId":"2","name":"Token #2","image":{}}
		],"pageKey":"cursor-2"}`))
	})

	page, err := client.NFTsForContract(context.Background(), "0xabc", "cursor-1", 100)
	require.NoError(t, err)
	require.Len(t, page.NFTs, 2)
	assert.Equal(t, "1", page.NFTs[0].TokenID)
	assert.Equal(t, "https://img.example/1-thumb.png", page.NFTs[0].Image.ThumbnailURL)
	assert.Equal(t, "cursor-2", page.PageKey)
}

func TestNFTsForContractFirstPageOmitsPageKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("pageKey"))
		w.Write([]byte(`{"nfts":[]}`))
	})

	page, err := client.NFTsForContract(context.Background(), "0xabc", "", 100)
	require.NoError(t, err)
	assert.Empty(t, page.NFTs)
	assert.Empty(t, page.PageKey)
}

func TestNFTMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getNFTMetadata", r.URL.Path)
		assert.Equal(t, "0xabc", r.URL.Query().Get("contractAddress"))
		assert.Equal(t, "42", r.URL.Query().Get("tokenId"))

		w.Write([]byte(`{"contract":{"address":"0xabc","name":"Test"},"tokenId":"42","name":"Token #42","description":"detail","image":{"originalUrl":"https://img.example/42.png"}}`))
	})

	nft, err := client.NFTMetadata(context.Background(), "0xabc", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", nft.TokenID)
	assert.Equal(t, "Token #42", nft.Name)
	assert.Equal(t, "https://img.example/42.png", nft.Image.OriginalURL)
}

func TestStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	})

	_, err := client.ContractMetadata(context.Background(), "0xabc")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}
