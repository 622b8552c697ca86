package handler

import (
	"errors"
	"net/http"

	"orderservice/internal/domain/model"
	"orderservice/internal/logger"
	"orderservice/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ドメインのエラーをステータスに変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if de, ok := model.AsDataValidationError(err); ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: de.Message})
	}
	if errors.Is(err, model.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
	}
	if errors.Is(err, model.ErrInvalidState) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: model.ErrInvalidState.Error()})
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	logger.FromCtx(c.Request().Context(), nil).Error("unhandled error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// echo自身が返すエラー（404/405など）もJSONで返す
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		} else {
			logger.FromCtx(c.Request().Context(), log).Error("unhandled error", zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, ErrorResponse{Error: msg})
	}
}
