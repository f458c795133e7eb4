package handler

import (
	"strconv"

	"campuspulse/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupPrize struct {
	container *do.Injector
}

func (gr *groupPrize) ListPrizes(c echo.Context) error {
	servicePrize, err := do.Invoke[*services.ServicePrize](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	prizes, err := servicePrize.ListPrizes(c.Request().Context(), limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, prizes, nil)
}

func (gr *groupPrize) Redeem(c echo.Context) error {
	servicePrize, err := do.Invoke[*services.ServicePrize](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	prizeID, err := paramID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	ctx := c.Request().Context()

	userID, err := resolveUserID(ctx, payload.UserID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	result, err := servicePrize.Redeem(ctx, userID, prizeID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}
