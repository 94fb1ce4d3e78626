package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误页模板
const (
	tplNotFound = "not_found.html"
	tplError    = "error.html"
)

// ── 页面响应 ──

// Page 200 渲染页面
func Page(c *gin.Context, name string, data gin.H) {
	HTML(c, http.StatusOK, name, data)
}

// HTML 以指定状态码渲染页面
func HTML(c *gin.Context, status int, name string, data gin.H) {
	c.HTML(status, name, data)
}

// Redirect 303 See Other，表单提交后跳转到 GET
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// ── 错误页 ──

// Error 通用错误页
func Error(c *gin.Context, status int, message string) {
	c.HTML(status, tplError, gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	c.HTML(http.StatusNotFound, tplNotFound, gin.H{
		"Title":   "Not Found",
		"Message": message,
	})
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, "Too many requests. Please slow down and try again.")
}

// RequestTooLarge 413
func RequestTooLarge(c *gin.Context) {
	Error(c, http.StatusRequestEntityTooLarge, "The submitted request is too large.")
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// ── JSON ──

// JSON 运维端点（/health）使用
func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
