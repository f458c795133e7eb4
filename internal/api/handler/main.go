package handler

import (
	"net/http"

	"campuspulse/internal/interfaces"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🦁")
	})

	routesAPI := r.Group("/api")
	{
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, HeaderUserID},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPI.Use(cors)
		routesAPI.Use(Identify())

		e := groupEvent{cfg.Container}
		routesAPI.GET("/events", e.ListEvents)
		routesAPI.POST("/events", e.CreateEvent)
		routesAPI.GET("/events/:id", e.GetEvent)
		routesAPI.POST("/events/:id/rsvp", e.RSVP)
		routesAPI.DELETE("/events/:id/rsvp", e.CancelRSVP)

		u := groupUser{cfg.Container}
		routesAPI.GET("/users", u.ListUsers)
		routesAPI.GET("/users/:id", u.GetUser)
		routesAPI.GET("/users/:id/history", u.GetHistory)

		l := groupLeaderboard{cfg.Container}
		routesAPI.GET("/leaderboard", l.GetLeaderboard)

		p := groupPrize{cfg.Container}
		routesAPI.GET("/prizes", p.ListPrizes)
		routesAPI.POST("/prizes/:id/redeem", p.Redeem)

		ci := groupCheckIn{cfg.Container}
		routesAPI.POST("/checkin", ci.CheckIn)

		ch := groupChallenge{cfg.Container}
		routesAPI.POST("/challenges", ch.Submit)
		routesAPI.GET("/challenges/:id", ch.Get)
		routesAPI.POST("/challenges/:id/review", ch.Review)

		routesBuddy := routesAPI.Group("/genz-buddy")
		{
			// the chat proxy is the only surface worth throttling; everything
			// else is bounded by the stores
			if limiter, err := do.Invoke[interfaces.Limiter](cfg.Container); err == nil {
				routesBuddy.Use(RateLimit(limiter))
			}

			b := groupBuddy{cfg.Container}
			routesBuddy.POST("", b.Chat)
		}
	}

	return r, nil
}
