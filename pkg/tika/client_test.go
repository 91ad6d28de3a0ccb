package tika

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qu-assist-go/internal/config"
)

func TestExtractPages(t *testing.T) {
	t.Run("按分页符切分逐页文本", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/tika", r.URL.Path)
			assert.Equal(t, "text/plain", r.Header.Get("Accept"))
			assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte("page one\fpage two\fpage three\f"))
		}))
		defer server.Close()

		client := NewClient(config.TikaConfig{ServerURL: server.URL})
		pages, err := client.ExtractPages(strings.NewReader("fake pdf"), "doc.pdf")
		require.NoError(t, err)
		require.Len(t, pages, 3)
		assert.Equal(t, "page one", pages[0])
		assert.Equal(t, "page three", pages[2])
	})

	t.Run("无分页符时整体作为单页", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("plain text without page breaks"))
		}))
		defer server.Close()

		client := NewClient(config.TikaConfig{ServerURL: server.URL})
		pages, err := client.ExtractPages(strings.NewReader("data"), "notes.txt")
		require.NoError(t, err)
		require.Len(t, pages, 1)
	})

	t.Run("服务端错误透传状态码", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unsupported media type", http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		client := NewClient(config.TikaConfig{ServerURL: server.URL})
		pages, err := client.ExtractPages(strings.NewReader("data"), "doc.pdf")
		assert.Error(t, err)
		assert.Nil(t, pages)
		assert.Contains(t, err.Error(), "422")
	})
}

func TestSplitPages(t *testing.T) {
	t.Run("丢弃尾随空页", func(t *testing.T) {
		pages := splitPages("a\fb\f")
		assert.Equal(t, []string{"a", "b"}, pages)
	})

	t.Run("中间空页保留以维持页码对应", func(t *testing.T) {
		pages := splitPages("a\f\fc")
		assert.Equal(t, []string{"a", "", "c"}, pages)
	})
}
