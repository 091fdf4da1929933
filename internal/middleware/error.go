package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorHandler turns the last error recorded with ctx.Error into the JSON
// body {"message": ...}. Unknown errors become a logged 500.
func ErrorHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if len(ctx.Errors) == 0 || ctx.Writer.Written() {
			return
		}

		err := ctx.Errors.Last().Err
		status, message := classify(err)

		if status == http.StatusInternalServerError {
			log.Printf("%s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
		}

		ctx.AbortWithStatusJSON(status, types.MessageResponse{Message: message})
	}
}

func classify(err error) (int, string) {
	if appErr, ok := apperr.As(err); ok {
		if appErr.Kind == apperr.KindInternal {
			return http.StatusInternalServerError, "Internal server error"
		}
		return appErr.Status(), appErr.Message
	}

	var (
		validationErrs validator.ValidationErrors
		typeErr        *json.UnmarshalTypeError
		syntaxErr      *json.SyntaxError
	)

	switch {
	case errors.As(err, &validationErrs), errors.As(err, &typeErr):
		return http.StatusUnprocessableEntity, "Validation failed"
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "Invalid request"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
