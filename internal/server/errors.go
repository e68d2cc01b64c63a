package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Desire-2/afriprog/internal/contract"
	"github.com/Desire-2/afriprog/internal/progression"
)

// httpErrorHandler maps domain errors onto HTTP codes: contract
// violations and request validation are 400, impossible transitions are
// 409, anything else is a 500.
func httpErrorHandler(err error, c echo.Context) {
	var code int
	var message interface{}

	var (
		httpErr    *echo.HTTPError
		fieldErrs  validator.ValidationErrors
		payloadErr *contract.ErrInvalidPayload
	)
	switch {
	case errors.As(err, &httpErr):
		if httpErr.Internal != nil {
			if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
				httpErr = herr
			}
		}
		code = httpErr.Code
		message = httpErr.Message
	case errors.As(err, &fieldErrs):
		flds := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			flds[fe.Field()] = fe.Tag()
		}
		code = http.StatusBadRequest
		message = echo.Map{"error": "validation failed", "fields": flds}
	case errors.As(err, &payloadErr):
		code = http.StatusBadRequest
		message = echo.Map{
			"error":  "invalid payload",
			"schema": payloadErr.Schema,
			"detail": payloadErr.Err.Error(),
		}
	case errors.Is(err, progression.ErrInvalidTransition):
		code = http.StatusConflict
		message = echo.Map{"error": err.Error()}
	default:
		code = http.StatusInternalServerError
		message = echo.Map{"error": http.StatusText(http.StatusInternalServerError)}
	}

	if m, ok := message.(string); ok {
		message = echo.Map{"error": m}
	}

	if !c.Response().Committed {
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, message)
		}
		if werr != nil {
			c.Echo().Logger.Error(werr)
		}
	}
}
