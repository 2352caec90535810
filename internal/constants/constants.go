package constants

import "time"

// API Server Constants
const (
	// DefaultAPIHost is the default API server host
	DefaultAPIHost = "localhost"

	// DefaultAPIPort is the default API server port
	DefaultAPIPort = 8080

	// MinPort is the minimum valid port number
	MinPort = 1

	// MaxPort is the maximum valid port number
	MaxPort = 65535

	// DefaultReadTimeout is the default HTTP read timeout
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the default HTTP write timeout
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout is the default HTTP idle timeout
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default graceful shutdown timeout
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMaxHeaderBytes is the default maximum request header size (1 MB)
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB

	// DefaultRateLimitPerSecond is the default rate limit (requests per second)
	DefaultRateLimitPerSecond = 1000

	// DefaultRateLimitBurst is the default rate limit burst size
	DefaultRateLimitBurst = 2000
)

// API Paths
const (
	// DefaultGraphQLPath is the default GraphQL endpoint path
	DefaultGraphQLPath = "/graphql"

	// DefaultGraphQLPlaygroundPath is the default GraphQL playground path
	DefaultGraphQLPlaygroundPath = "/playground"

	// DefaultWebSocketPath is the default WebSocket endpoint path
	DefaultWebSocketPath = "/ws"
)

// Upstream Constants
const (
	// DefaultUpstreamTimeout is the default timeout for upstream API requests
	DefaultUpstreamTimeout = 10 * time.Second

	// DefaultUpstreamRatePerSecond is the default upstream request budget
	DefaultUpstreamRatePerSecond = 10

	// DefaultUpstreamRateBurst is the default upstream request burst
	DefaultUpstreamRateBurst = 20
)

// Search Constants
const (
	// DefaultPageSize is the number of tokens requested per listing page
	DefaultPageSize = 100

	// MaxPageSize is the maximum listing page size accepted from callers
	MaxPageSize = 100

	// MinPageSize is the minimum listing page size
	MinPageSize = 1

	// DefaultSuggestLimit is the maximum number of collection suggestions
	DefaultSuggestLimit = 5

	// DefaultSuggestMinChars is the minimum query length before suggestions fire
	DefaultSuggestMinChars = 2

	// DefaultSuggestDebounce is the delay between a query change and the
	// suggestion request it triggers
	DefaultSuggestDebounce = 300 * time.Millisecond

	// DefaultSessionTTL is how long an idle search session is retained
	DefaultSessionTTL = 30 * time.Minute

	// DefaultSessionCleanupPeriod is how often expired sessions are evicted
	DefaultSessionCleanupPeriod = 10 * time.Minute
)

// Cache Constants
const (
	// DefaultMetadataTTL is how long contract metadata lookups are cached
	DefaultMetadataTTL = 15 * time.Minute

	// DefaultMetadataCleanupPeriod is how often expired metadata entries are evicted
	DefaultMetadataCleanupPeriod = 5 * time.Minute
)

// WebSocket Constants
const (
	// DefaultWSReadBufferSize is the default WebSocket read buffer size
	DefaultWSReadBufferSize = 1024

	// DefaultWSWriteBufferSize is the default WebSocket write buffer size
	DefaultWSWriteBufferSize = 1024

	// DefaultWSPingInterval is the default WebSocket ping interval
	DefaultWSPingInterval = 30 * time.Second

	// DefaultWSPongTimeout is the default WebSocket pong timeout
	DefaultWSPongTimeout = 60 * time.Second

	// DefaultWSWriteTimeout is the default WebSocket write timeout
	DefaultWSWriteTimeout = 10 * time.Second
)
