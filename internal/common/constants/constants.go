package constants

import "time"

const (
	EmailMaxLength     = 255
	UsernameMaxLength  = 50
	NameMaxLength      = 100
	BioMaxLength       = 500
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32

	DefaultBcryptCost = 10

	MaxImageSizeBytes     = 5 * 1024 * 1024
	MaxImagesPerPost      = 4
	MultipartMemoryBytes  = 8 << 20
	DefaultMaxRequestSize = MaxImagesPerPost*MaxImageSizeBytes + 1<<20

	PostImagesPrefix = "posts"
	AvatarsPrefix    = "avatars"

	FederatedUsernameMaxAttempts = 50

	SessionCookieName     = "session_token"
	OAuthStateCookieName  = "oauth_state"
	OAuthStateCookieTTL   = 10 * time.Minute
	DefaultSessionTTL     = 30 * 24 * time.Hour
	DefaultRequestTimeout = 5 * time.Second
	DefaultUploadTimeout  = 60 * time.Second

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBPingTimeout         = 3 * time.Second
	MigrationTimeout      = time.Minute

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 60 * time.Second
	ServerWriteTimeout      = 60 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort = "8080"

	FeedWriteWait      = 10 * time.Second
	FeedPongWait       = 60 * time.Second
	FeedPingPeriod     = (FeedPongWait * 9) / 10
	FeedMaxMessageSize = 512
	FeedSendBufSize    = 64

	RateLimitCleanupInterval = 5 * time.Minute
	RedisRateLimitWindow     = time.Minute
	RedisRateLimitTimeout    = 250 * time.Millisecond

	RateLimitSigninRequestsPerSecond  = 0.2
	RateLimitSigninBurst              = 5
	RateLimitSignupRequestsPerSecond  = 0.1
	RateLimitSignupBurst              = 3
	RateLimitUploadRequestsPerSecond  = 0.5
	RateLimitUploadBurst              = 5
	RateLimitGeneralRequestsPerSecond = 10
	RateLimitGeneralBurst             = 30

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
