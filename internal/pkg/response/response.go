package response

import (
	cErr "joingo/internal/pkg/error"
	"net/http"

	"github.com/gin-gonic/gin"
)

const HeaderRequestID = "X-Request-ID"

// Response 成功回應外層
type Response struct {
	Data any `json:"data"`
}

// ErrorBody 失敗回應內容
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse 失敗回應外層
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func Create(c *gin.Context, data any) {
	c.Status(http.StatusCreated)
	c.Set("data", data)
	c.Abort()
}

func Success(c *gin.Context, data any) {
	c.Set("data", data)
	c.Abort()
}

func AbortWithError(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}

func Fail(c *gin.Context, requestID string, httpCode int, code string, message string) {
	if requestID != "" {
		c.Header(HeaderRequestID, requestID)
	}
	c.JSON(httpCode, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
	c.Abort()
}

func FailByErr(c *gin.Context, requestID string, err error) {
	v := cErr.From(err)
	Fail(c, requestID, v.HttpCode(), v.Code(), v.ErrorDesc())
}
