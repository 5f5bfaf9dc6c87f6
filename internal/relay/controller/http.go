package controller

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/corvusHold/relay/internal/platform/ratelimit"
	domain "github.com/corvusHold/relay/internal/relay/domain"
)

// HealthMessage is the body of GET /.
const HealthMessage = "Server up and running"

type Controller struct {
	svc      domain.Service
	rl       ratelimit.Store
	rlLimit  int
	rlWindow time.Duration
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// WithRateLimit enables per-client limiting on the send endpoints. A nil store
// falls back to an in-process counter; limit 0 disables limiting.
func (h *Controller) WithRateLimit(store ratelimit.Store, limit int, window time.Duration) *Controller {
	h.rl = store
	h.rlLimit = limit
	h.rlWindow = window
	return h
}

func (h *Controller) Register(e *echo.Echo) {
	mkMW := func(name string) []echo.MiddlewareFunc {
		if h.rlLimit <= 0 {
			return nil
		}
		p := ratelimit.Policy{Name: name, Limit: h.rlLimit, Window: h.rlWindow, Key: ratelimit.KeyIP(name)}
		if h.rl != nil {
			return []echo.MiddlewareFunc{ratelimit.MiddlewareWithStore(p, h.rl)}
		}
		return []echo.MiddlewareFunc{ratelimit.Middleware(p)}
	}

	e.GET("/", h.health)
	e.POST("/email/:templateId", h.sendEmail, mkMW("relay:email")...)
	e.POST("/sms/:templateId", h.sendSMS, mkMW("relay:sms")...)
}

func (h *Controller) health(c echo.Context) error {
	return c.String(http.StatusOK, HealthMessage)
}

// sendEmail relays a Mailjet template email.
// The body is read as JSON whatever its Content-Type; anything unparsable
// counts as an empty object.
func (h *Controller) sendEmail(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	out, err := h.svc.SendEmail(c.Request().Context(), c.Param("templateId"), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.String(out.Status, out.Message)
}

// sendSMS relays a configured SMS template.
func (h *Controller) sendSMS(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	out, err := h.svc.SendSMS(c.Request().Context(), c.Param("templateId"), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.String(out.Status, out.Message)
}

func writeError(c echo.Context, err error) error {
	e, ok := domain.AsError(err)
	if !ok {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("relay: unexpected error")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if e.Kind == domain.KindUpstream && e.UpstreamStatus > 0 {
		ct := e.ContentType
		if ct == "" {
			ct = echo.MIMETextPlainCharsetUTF8
		}
		return c.Blob(e.UpstreamStatus, ct, e.Body)
	}
	if e.Kind == domain.KindInternal {
		zerolog.Ctx(c.Request().Context()).Error().Err(e).Msg("relay: internal error")
	}
	return c.JSON(e.HTTPStatus(), map[string]string{"error": e.Message})
}

// HTTPErrorHandler renders framework errors (unknown route, wrong method,
// oversized body) with the same {"error": ...} shape as pipeline failures.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = strings.ToLower(m)
		} else {
			msg = strings.ToLower(http.StatusText(code))
		}
	} else {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("unhandled error")
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}
