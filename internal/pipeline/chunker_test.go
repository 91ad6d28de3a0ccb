package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText(t *testing.T) {
	t.Run("短文本只产生一个切块", func(t *testing.T) {
		chunks := ChunkText("Qatar University was founded in 1977.", 1000, 200)
		require.Len(t, chunks, 1)
		assert.Equal(t, 0, chunks[0].ChunkIndex)
		assert.Equal(t, "Qatar University was founded in 1977.", chunks[0].Content)
		assert.Equal(t, 0, chunks[0].StartChar)
		assert.Equal(t, 6, chunks[0].WordCount)
	})

	t.Run("空文本与纯空白文本不产生切块", func(t *testing.T) {
		assert.Empty(t, ChunkText("", 1000, 200))
		assert.Empty(t, ChunkText("   \n\t  ", 1000, 200))
	})

	t.Run("长文本按重叠步进切分", func(t *testing.T) {
		// 2000 个字符，无句末符号，退化为硬切
		text := strings.Repeat("word ", 400)
		chunks := ChunkText(text, 1000, 200)
		require.Greater(t, len(chunks), 1)

		for i, c := range chunks {
			// 索引必须致密
			assert.Equal(t, i, c.ChunkIndex)
			assert.NotEmpty(t, c.Content)
			assert.LessOrEqual(t, c.EndChar, utf8.RuneCountInString(text))
			if i > 0 {
				// 相邻切块必须有重叠区间
				assert.Less(t, c.StartChar, chunks[i-1].EndChar)
				assert.Greater(t, c.StartChar, chunks[i-1].StartChar)
			}
		}
		// 末块必须覆盖到文本末尾
		last := chunks[len(chunks)-1]
		assert.Equal(t, utf8.RuneCountInString(text), last.EndChar)
	})

	t.Run("切点对齐句末符号", func(t *testing.T) {
		// 句号出现在回扫窗口内，切点应紧贴句号之后
		text := strings.Repeat("a", 95) + ". " + strings.Repeat("b", 200)
		chunks := ChunkText(text, 100, 20)
		require.NotEmpty(t, chunks)
		assert.True(t, strings.HasSuffix(chunks[0].Content, "."))
		assert.Equal(t, 96, chunks[0].EndChar)
	})

	t.Run("窗口内无句末符号时按长度硬切", func(t *testing.T) {
		text := strings.Repeat("x", 300)
		chunks := ChunkText(text, 100, 20)
		require.NotEmpty(t, chunks)
		assert.Equal(t, 100, chunks[0].EndChar)
		assert.Equal(t, 100, utf8.RuneCountInString(chunks[0].Content))
	})

	t.Run("非法参数使用默认值且必然终止", func(t *testing.T) {
		text := strings.Repeat("sentence. ", 300)
		chunks := ChunkText(text, 0, 0)
		assert.NotEmpty(t, chunks)

		// overlap 不小于 chunkSize 时退化处理，不能死循环
		chunks = ChunkText(text, 100, 100)
		assert.NotEmpty(t, chunks)
		for i := 1; i < len(chunks); i++ {
			assert.Greater(t, chunks[i].StartChar, chunks[i-1].StartChar)
		}
	})

	t.Run("多字节字符按 rune 计数", func(t *testing.T) {
		text := strings.Repeat("大学", 120) // 240 个 rune
		chunks := ChunkText(text, 100, 20)
		require.Greater(t, len(chunks), 1)
		assert.Equal(t, 100, chunks[0].ChunkSize)
		assert.Equal(t, 100, chunks[0].EndChar)
	})
}
