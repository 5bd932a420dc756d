package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

// Envelope: единый конверт всех ответов API.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Page       `json:"pagination,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Page struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

func NewPage(total, limit, offset int) *Page {
	return &Page{Total: total, Limit: limit, Offset: offset, HasMore: offset+limit < total}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated отдаёт страницу списка. data всегда сериализуется, даже пустая.
func Paginated(c *gin.Context, data interface{}, total, limit, offset int) {
	c.JSON(http.StatusOK, struct {
		Success    bool        `json:"success"`
		Data       interface{} `json:"data"`
		Pagination *Page       `json:"pagination"`
	}{true, data, NewPage(total, limit, offset)})
}

// Error переводит ошибку use case в конверт. Нетипизированные ошибки
// наружу не раскрываются.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Log.WithError(err).WithField("path", c.FullPath()).Error("http: необработанная ошибка")
		write(c, http.StatusInternalServerError, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
		return
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Log.WithError(err).WithField("path", c.FullPath()).Error("http: ошибка обработки запроса")
	}
	write(c, appErr.HTTPStatus, appErr.Code, appErr.Message)
}

func BadRequest(c *gin.Context, message string) {
	Abort(c, http.StatusBadRequest, apperror.ErrCodeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Abort(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, message)
}

// Abort пишет ошибку и прерывает цепочку middleware.
func Abort(c *gin.Context, status int, code apperror.ErrorCode, message string) {
	c.Abort()
	write(c, status, code, message)
}

func write(c *gin.Context, status int, code apperror.ErrorCode, message string) {
	c.JSON(status, Envelope{Error: &ErrorBody{Code: string(code), Message: message}})
}
