package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qu-assist-go/internal/model"
)

func TestMemoryCache(t *testing.T) {
	t.Run("写入后可读出", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Put("k1", &model.ChatResult{Response: "answer"})

		got, ok := cache.Get("k1")
		require.True(t, ok)
		assert.Equal(t, "answer", got.Response)
	})

	t.Run("未写入的键读取失败", func(t *testing.T) {
		cache := NewMemoryCache()
		got, ok := cache.Get("missing")
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("清空后所有条目失效", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Put("k1", &model.ChatResult{Response: "a"})
		cache.Put("k2", &model.ChatResult{Response: "b"})

		cache.Clear()
		_, ok := cache.Get("k1")
		assert.False(t, ok)
		_, ok = cache.Get("k2")
		assert.False(t, ok)
	})
}

func TestSuggestions(t *testing.T) {
	t.Run("按类型返回定制列表", func(t *testing.T) {
		list := Suggestions(model.DocTypeAdmissions)
		require.NotEmpty(t, list)
		assert.Contains(t, list, "How do I apply for admission?")
	})

	t.Run("未知类型返回通用列表前五条", func(t *testing.T) {
		list := Suggestions("")
		assert.Len(t, list, 5)
		assert.Equal(t, Suggestions("unknown"), list)
	})
}
