package middleware

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
	"github.com/bcdservices/dashboard-api/pkg/httputil"
	pkgvalidator "github.com/bcdservices/dashboard-api/pkg/validator"
)

var registerOnce sync.Once

// Validation installs the JSON field names and custom rules on gin's
// binding validator, then answers bind errors that handlers attach with
// c.Error as a 400 listing every failed field.
func Validation() gin.HandlerFunc {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			pkgvalidator.Register(v)
		}
	})

	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			if !e.IsType(gin.ErrorTypeBind) {
				continue
			}
			message := "invalid request"
			var fields []pkgvalidator.FieldError
			var verrs validator.ValidationErrors
			if errors.As(e.Err, &verrs) {
				fields = pkgvalidator.Fields(verrs)
				message = pkgvalidator.Summary(verrs)
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, httputil.Response{
				Status:  httputil.StatusError,
				Message: message,
				Code:    int(apperrors.ErrBadRequest),
				Data:    fields,
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}
	}
}
