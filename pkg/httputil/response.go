package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// ContextRequestID is the gin context key the request-id middleware sets.
	ContextRequestID = "request_id"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Code    int         `json:"code,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: StatusSuccess, Data: data})
}

func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Status: StatusSuccess, Data: data})
}

// RespondWithError sends an error response. AppErrors keep their message
// and status; anything else is reported as an internal error.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	code := int(apperrors.ErrInternal)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode()
		message = appErr.Message
		code = int(appErr.Code)
	}

	c.AbortWithStatusJSON(status, Response{
		Status:  StatusError,
		Message: message,
		Code:    code,
		TraceID: c.GetString(ContextRequestID),
	})
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, items interface{}, page, totalPages int) {
	c.JSON(http.StatusOK, Response{
		Status: StatusSuccess,
		Data: PaginatedResponse{
			Items:      items,
			Pagination: Pagination{Page: page, TotalPages: totalPages},
		},
	})
}

// Abort hands err to the error middleware and stops the chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// AbortBinding hands a request binding error to the validation middleware.
func AbortBinding(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	c.Abort()
}
