package handler

import (
	"context"
	"errors"
	"strings"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"
	"campuspulse/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

const HeaderUserID = "X-User-Id"

type ctxKey string

var ctxKeyUserID ctxKey = "USER_ID"

// Identify lifts the caller-supplied user id into the request context.
// Identity is trusted here; whatever gateway fronts this service owns
// authentication. Requests without the header pass through and fail later
// only if the operation actually needs a user.
func Identify() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if userID == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyUserID, userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// resolveUserID prefers the explicit body/query value and falls back to the
// identity header.
func resolveUserID(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	userID, ok := ctx.Value(ctxKeyUserID).(string)
	if !ok || userID == "" {
		return "", errorx.Wrap(errors.New("user_id is required"), errorx.Validation)
	}

	return userID, nil
}

// ResolveValidUser materializes the caller as a stored user, creating the row
// on first sight.
func ResolveValidUser(ctx context.Context, container *do.Injector, explicit string) (*models.User, error) {
	userID, err := resolveUserID(ctx, explicit)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return serviceUser.FindOrCreateUser(ctx, userID, "")
}

func RateLimit(limiter interfaces.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderUserID)
			if key == "" {
				key = c.RealIP()
			}

			err := limiter.Allow(c.Request().Context(), "rate:"+key, redis_rate.PerMinute(30))
			if err != nil {
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("too many requests"), errorx.RateLimiting), -1)
				return nil
			}

			return next(c)
		}
	}
}
