package middleware

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// EnsureUTF8Body 确保请求体是 UTF-8 编码
// Windows 下的 curl 和部分表单会以 Windows-1252 发送西班牙语重音字符
// 无效 UTF-8 的请求体按 Windows-1252 转码
func EnsureUTF8Body() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		_ = c.Request.Body.Close()

		if len(bodyBytes) == 0 || utf8.Valid(bodyBytes) {
			c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			c.Next()
			return
		}

		utf8Bytes, err := convertWindows1252ToUTF8(bodyBytes)
		if err != nil || !utf8.Valid(utf8Bytes) {
			c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			c.Next()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(utf8Bytes))
		c.Request.ContentLength = int64(len(utf8Bytes))
		c.Next()
	}
}

// convertWindows1252ToUTF8 将 Windows-1252 编码的字节转换为 UTF-8
func convertWindows1252ToUTF8(b []byte) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(b), charmap.Windows1252.NewDecoder())
	return io.ReadAll(reader)
}
