package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/auth"
)

var (
	errHttpNotFound    = echo.NewHTTPError(http.StatusNotFound, "no encontrado")
	errServiceDown     = "el servicio no está disponible, intente nuevamente más tarde"
	errInternalMessage = http.StatusText(http.StatusInternalServerError)
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, loginPath string, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}
		internal := false

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *auth.AuthError:
			code = http.StatusUnauthorized
			message = echo.Map{"error": origErr.Message, "codigo": origErr.Code}
		case *auth.Redirect:
			redirect := *origErr
			if redirect.Target == "" {
				redirect.Target = loginPath
			}
			if redirect.Next == "" {
				redirect.Next = ctx.Request().URL.RequestURI()
			}
			ctx.Response().Header().Set(echo.HeaderLocation, redirect.Location())
			code = http.StatusUnauthorized
			message = echo.Map{"error": "debe iniciar sesión", "redirect": redirect.Location()}
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = fmt.Sprintf("%s %d no encontrado", origErr.Resource, origErr.ID)
		case *core.StorageError:
			code = http.StatusServiceUnavailable
			message = errServiceDown
			logger.Error(errServiceDown, err, requestData(ctx))
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = errInternalMessage
			internal = true

			logger.Error(errInternalMessage, errors.Wrap(err, errInternalMessage), requestData(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if internal && ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// requestData is the extra data reported along with server errors.
func requestData(ctx echo.Context) map[string]interface{} {
	data := map[string]interface{}{
		"method": ctx.Request().Method,
		"uri":    ctx.Request().URL.RequestURI(),
	}
	if id := ctx.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		data["request_id"] = id
	}
	if claims, ok := getContextClaims(ctx); ok {
		data["usuario_id"] = claims.Subject
		data["institucion_id"] = claims.InstitutionID
	}
	return data
}
