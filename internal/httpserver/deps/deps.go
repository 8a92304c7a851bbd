package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/nearby/internal/admin"
	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/geo"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/persist"
	"github.com/MrSnakeDoc/nearby/internal/search"
	"github.com/MrSnakeDoc/nearby/internal/sources/catalog"
	"github.com/MrSnakeDoc/nearby/internal/store"
	"github.com/MrSnakeDoc/nearby/internal/voice"
)

// WeatherSource is satisfied by *ai.Client.
type WeatherSource interface {
	FetchWeather(ctx context.Context, loc domain.Location) *domain.Weather
}

// Concierge is satisfied by *ai.Client.
type Concierge interface {
	Chat(ctx context.Context, sessionID, message string, loc *domain.Location) (string, error)
	EndChat(sessionID string)
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access healthz/readyz/infra/reload
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	AdminPasskey    string // shared secret for /api/admin
	RateLimitBurst  int    // search requests allowed in a burst, per client IP
	RateLimitPerMin int    // search refill rate, per client IP

	Store       store.Store           // persistence backend (redis or memory)
	RedisClient *redis.Client         // nil when running on the memory store
	Catalog     *catalog.Holder       // categories, suggestions, trusted sources
	Repos       *persist.Repositories // typed access to persisted state
	Search      *search.Service
	Weather     WeatherSource
	Concierge   Concierge
	Admin       *admin.Service
	Voice       *voice.Manager
	GeoOptions  geo.Options

	ReloadTrigger chan struct{} // Channel to trigger a manual catalog reload
}
