package handler

import (
	"time"

	"campuspulse/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupCheckIn struct {
	container *do.Injector
}

func (gr *groupCheckIn) CheckIn(c echo.Context) error {
	serviceCheckIn, err := do.Invoke[*services.ServiceCheckIn](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	var payload struct {
		EventID int64  `json:"event_id"`
		UserID  string `json:"user_id"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container, payload.UserID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	result, err := serviceCheckIn.CheckIn(ctx, payload.EventID, user.ID, time.Now())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}
