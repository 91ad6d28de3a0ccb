// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"qu-assist-go/pkg/log"
)

// maxLoggedBody 限制日志中记录的请求/响应体长度，避免长回答刷爆日志。
const maxLoggedBody = 2048

// bodyLogWriter 用于捕获响应体
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现了 io.Writer 接口，将响应写入 gin.ResponseWriter 和一个内部的 buffer
func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// RequestLogger 是一个 Gin 中间件，用于记录详细的请求和响应日志。
// 文件上传的 multipart 请求体是二进制内容，不做记录。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// 读取并重新缓存请求体（multipart 跳过）
		var requestBody []byte
		contentType := c.GetHeader("Content-Type")
		if c.Request.Body != nil && !strings.HasPrefix(contentType, "multipart/form-data") {
			requestBody, _ = io.ReadAll(c.Request.Body)
			// 将读取的请求体重新设置回 c.Request.Body，以便后续处理函数可以正常读取
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		// 使用自定义的 ResponseWriter 捕获响应
		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		// 处理请求
		c.Next()

		latency := time.Since(startTime)

		// 记录完整的请求和响应信息
		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"requestBody", clip(string(requestBody)),
			"responseBody", clip(blw.body.String()),
		)
	}
}

func clip(s string) string {
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody] + "...(truncated)"
	}
	return s
}
