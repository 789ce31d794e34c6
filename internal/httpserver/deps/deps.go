package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lightkeep/lightkeep/internal/lighthouse"
	"github.com/lightkeep/lightkeep/internal/logger"
	"github.com/lightkeep/lightkeep/internal/store"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Store          store.Store            // report persistence
	Runner         lighthouse.AuditRunner // external audit invocation
	Reference      *lighthouse.Reference  // bundled metadata for /lh/categories and /lh/audits
	RedisClient    *redis.Client          // raw client handle, used by readyz (nil in tests)
	RefreshTrigger chan struct{}          // channel kicking the refresh fan-out

	TrustProxy         bool // true when behind a trusted front-end
	RateLimitBurst     int  // POST /lh/newaudit burst
	RateLimitPerMinute int  // POST /lh/newaudit refill rate
}
