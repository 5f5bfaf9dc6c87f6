package relay

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/corvusHold/relay/internal/config"
	evsvc "github.com/corvusHold/relay/internal/events/service"
	gdomain "github.com/corvusHold/relay/internal/gateway/domain"
	gsvc "github.com/corvusHold/relay/internal/gateway/service"
	rl "github.com/corvusHold/relay/internal/platform/ratelimit"
	ctrl "github.com/corvusHold/relay/internal/relay/controller"
	svc "github.com/corvusHold/relay/internal/relay/service"
)

// Register wires the relay module against Mailjet and registers HTTP routes.
// store may be nil, in which case rate limits are kept in process.
func Register(e *echo.Echo, cfg config.Config, store rl.Store, log zerolog.Logger) {
	RegisterWithGateway(e, cfg, gsvc.NewMailjet(cfg), store, log)
}

// RegisterWithGateway is Register with an explicit provider gateway.
func RegisterWithGateway(e *echo.Echo, cfg config.Config, gw gdomain.Gateway, store rl.Store, log zerolog.Logger) {
	s := svc.New(svc.NewPolicy(cfg), gw)
	s.SetPublisher(evsvc.NewLogger())
	s.SetLogger(log)
	ctrl.New(s).WithRateLimit(store, cfg.RateLimitLimit, cfg.RateLimitWindow).Register(e)
}
