// Package tika 提供了一个与 Apache Tika 服务器交互的客户端。
package tika

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"qu-assist-go/internal/config"
)

// Client 是 Tika 服务器的客户端。
type Client struct {
	serverURL string
	client    *http.Client
}

// NewClient 创建一个新的 Tika 客户端实例。
func NewClient(cfg config.TikaConfig) *Client {
	return &Client{
		serverURL: cfg.ServerURL,
		client:    http.DefaultClient,
	}
}

// ExtractPages 根据文件后缀推断 MIME 类型，调用 Tika 提取纯文本，
// 并按 Tika 输出的分页符（\f）切分为逐页文本。
// 非分页格式没有分页符，整体作为单页返回。
func (c *Client) ExtractPages(fileReader io.Reader, fileName string) ([]string, error) {
	contentType := detectMimeType(fileName)

	req, err := http.NewRequest("PUT", c.serverURL+"/tika", fileReader)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用 Tika 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Tika 返回错误 [%d]: %s", resp.StatusCode, string(body))
	}

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		return nil, fmt.Errorf("读取 Tika 响应失败: %w", err)
	}

	return splitPages(buf.String()), nil
}

// splitPages 按分页符切分全文；末尾的空页（尾随 \f 产生）被丢弃。
func splitPages(text string) []string {
	parts := strings.Split(text, "\f")
	pages := make([]string, 0, len(parts))
	for i, p := range parts {
		if i == len(parts)-1 && strings.TrimSpace(p) == "" && len(pages) > 0 {
			continue
		}
		pages = append(pages, p)
	}
	return pages
}

// detectMimeType 根据文件扩展名判断 Content-Type
func detectMimeType(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return "application/octet-stream"
	}
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		// fallback 默认
		return "application/octet-stream"
	}
	return mimeType
}
