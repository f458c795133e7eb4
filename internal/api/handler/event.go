package handler

import (
	"errors"
	"strconv"

	"campuspulse/internal/models"
	"campuspulse/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupEvent struct {
	container *do.Injector
}

func (gr *groupEvent) ListEvents(c echo.Context) error {
	serviceEvent, err := do.Invoke[*services.ServiceEvent](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	category := c.QueryParam("category")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := serviceEvent.ListEvents(c.Request().Context(), category, limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, events, nil)
}

func (gr *groupEvent) GetEvent(c echo.Context) error {
	serviceEvent, err := do.Invoke[*services.ServiceEvent](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	eventID, err := paramID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	event, err := serviceEvent.GetEvent(c.Request().Context(), eventID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, event, nil)
}

func (gr *groupEvent) CreateEvent(c echo.Context) error {
	serviceEvent, err := do.Invoke[*services.ServiceEvent](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	var payload models.Event
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	event, err := serviceEvent.CreateEvent(c.Request().Context(), &payload)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, event, nil)
}

func (gr *groupEvent) RSVP(c echo.Context) error {
	serviceEvent, err := do.Invoke[*services.ServiceEvent](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	eventID, err := paramID(c)
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

	user, err := ResolveValidUser(ctx, gr.container, payload.UserID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	result, err := serviceEvent.RSVP(ctx, eventID, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupEvent) CancelRSVP(c echo.Context) error {
	serviceEvent, err := do.Invoke[*services.ServiceEvent](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	eventID, err := paramID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	ctx := c.Request().Context()

	userID, err := resolveUserID(ctx, c.QueryParam("user_id"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	result, err := serviceEvent.CancelRSVP(ctx, eventID, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}

func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorx.Wrap(errors.New("id must be a positive integer"), errorx.Invalid)
	}

	return id, nil
}
