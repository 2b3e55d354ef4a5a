package server

import (
	"errors"
	"net/http"

	"sheetpos/pos/internal/domain"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type fetchDetail struct {
	StatusCode int      `json:"status_code,omitempty"`
	Attempts   []string `json:"attempts,omitempty"`
}

type catalogDetail struct {
	Headers  []string `json:"headers"`
	RowCount int      `json:"row_count"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindInvalidSource:      http.StatusBadRequest,
	domain.KindFetchTimeout:       http.StatusGatewayTimeout,
	domain.KindFetchAuthRequired:  http.StatusBadGateway,
	domain.KindFetchFailed:        http.StatusBadGateway,
	domain.KindUnreadableWorkbook: http.StatusUnprocessableEntity,
	domain.KindEmptyCatalog:       http.StatusUnprocessableEntity,
	domain.KindNoValidProducts:    http.StatusUnprocessableEntity,
	domain.KindProductNotFound:    http.StatusNotFound,
	domain.KindLineNotFound:       http.StatusNotFound,
	domain.KindOutOfStock:         http.StatusConflict,
	domain.KindInsufficientStock:  http.StatusConflict,
	domain.KindInvalidQuantity:    http.StatusBadRequest,
	domain.KindInvalidPrice:       http.StatusBadRequest,
	domain.KindEmptyCart:          http.StatusConflict,
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, code, message string, detail any) error {
	return c.JSON(status, errorResponse{Code: code, Message: message, Detail: detail})
}

// failWith renders a service error, mapping typed errors to their status.
func failWith(c echo.Context, err error) error {
	var typed *domain.Error
	if !errors.As(err, &typed) {
		log.Errorf("❌ %s %s: %v", c.Request().Method, c.Path(), err)
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal error", nil)
	}

	status, found := kindStatus[typed.Kind]
	if !found {
		status = http.StatusInternalServerError
	}

	var detail any
	switch typed.Kind {
	case domain.KindNoValidProducts:
		detail = catalogDetail{Headers: typed.Headers, RowCount: typed.RowCount}
	case domain.KindFetchFailed, domain.KindFetchAuthRequired, domain.KindFetchTimeout:
		if typed.StatusCode != 0 || len(typed.Attempts) > 0 {
			detail = fetchDetail{StatusCode: typed.StatusCode, Attempts: typed.Attempts}
		}
	}

	return fail(c, status, typed.Kind.String(), typed.Error(), detail)
}
