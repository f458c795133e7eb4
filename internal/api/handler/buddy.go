package handler

import (
	"campuspulse/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupBuddy struct {
	container *do.Injector
}

func (gr *groupBuddy) Chat(c echo.Context) error {
	serviceBuddy, err := do.Invoke[*services.ServiceBuddy](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	var payload struct {
		Prompt string `json:"prompt"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	reply, err := serviceBuddy.Chat(c.Request().Context(), payload.Prompt)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, reply, nil)
}
