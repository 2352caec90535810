package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusError reports a non-2xx response from the indexing service
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// Config holds upstream client configuration
type Config struct {
	// BaseURL is the root URL of the indexing API
	BaseURL string
	// APIKey is sent as a query parameter on every request when set
	APIKey string
	// Timeout is the per-request timeout used when the context has no deadline
	Timeout time.Duration
	// RatePerSecond is the outbound request budget; 0 disables limiting
	RatePerSecond float64
	// RateBurst is the outbound burst allowance
	RateBurst int
	// Logger is the logger for request diagnostics
	Logger *zap.Logger
}

// Client talks to the NFT indexing service
type Client struct {
	http    *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a new upstream client
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{
		http:    &fasthttp.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// SearchContracts runs a name search against the indexing service and returns
// up to pageSize matches from the first result page.
func (c *Client) SearchContracts(ctx context.Context, query string, pageSize int) ([]ContractMatch, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	body, err := json.Marshal(searchContractsRequest{
		Query:    query,
		Filter:   "",
		Page:     1,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	raw, err := c.do(ctx, fasthttp.MethodPost, c.endpoint("/searchContractMetadata", nil), body)
	if err != nil {
		return nil, err
	}

	var resp searchContractsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	c.logger.Debug("contract search completed",
		zap.String("query", query),
		zap.Int("matches", len(resp.Contracts)))

	return resp.Contracts, nil
}

// ContractMetadata fetches the recorded metadata for a contract address
func (c *Client) ContractMetadata(ctx context.Context, address string) (*ContractMetadataResponse, error) {
	if address == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	params := url.Values{}
	params.Set("contractAddress", address)

	raw, err := c.do(ctx, fasthttp.MethodGet, c.endpoint("/getContractMetadata", params), nil)
	if err != nil {
		return nil, err
	}

	var resp ContractMetadataResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode contract metadata response: %w", err)
	}

	return &resp, nil
}

// NFTsForContract fetches one page of the collection listing for a contract.
// An empty pageKey requests the first page.
func (c *Client) NFTsForContract(ctx context.Context, address, pageKey string, limit int) (*NFTPage, error) {
	if address == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	params := url.Values{}
	params.Set("contractAddress", address)
	params.Set("withMetadata", "true")
	params.Set("limit", strconv.Itoa(limit))
	if pageKey != "" {
		params.Set("pageKey", pageKey)
	}

	raw, err := c.do(ctx, fasthttp.MethodGet, c.endpoint("/getNFTsForContract", params), nil)
	if err != nil {
		return nil, err
	}

	var page NFTPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode listing response: %w", err)
	}

	c.logger.Debug("listing page fetched",
		zap.String("contract", address),
		zap.Int("items", len(page.NFTs)),
		zap.Bool("has_more", page.PageKey != ""))

	return &page, nil
}

// NFTMetadata fetches the full record for a single token
func (c *Client) NFTMetadata(ctx context.Context, address, tokenID string) (*NFT, error) {
	if address == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}
	if tokenID == "" {
		return nil, fmt.Errorf("token ID cannot be empty")
	}

	params := url.Values{}
	params.Set("contractAddress", address)
	params.Set("tokenId", tokenID)

	raw, err := c.do(ctx, fasthttp.MethodGet, c.endpoint("/getNFTMetadata", params), nil)
	if err != nil {
		return nil, err
	}

	var nft NFT
	if err := json.Unmarshal(raw, &nft); err != nil {
		return nil, fmt.Errorf("failed to decode token metadata response: %w", err)
	}

	return &nft, nil
}

// endpoint builds a request URL under the base URL
func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("apiKey", c.apiKey)
	}
	if len(params) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + params.Encode()
}

// do executes one request against the indexing service
func (c *Client) do(ctx context.Context, method, requestURL string, body []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if body != nil {
		req.SetBody(body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("upstream request failed",
			zap.String("url", requestURL),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("request to %s failed: %w", requestURL, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		c.logger.Error("upstream request rejected",
			zap.String("url", requestURL),
			zap.Int("status", resp.StatusCode()))
		return nil, &StatusError{
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}

	// resp.Body is reused once the response is released
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}
