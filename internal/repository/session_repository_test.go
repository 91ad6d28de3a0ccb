package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qu-assist-go/internal/model"
)

func setupSessionRepo(t *testing.T) (SessionRepository, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionRepository(client), mr, client
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("追加多轮后按时间顺序读出", func(t *testing.T) {
		repo, _, _ := setupSessionRepo(t)

		for i := 1; i <= 3; i++ {
			err := repo.AppendTurn(ctx, "s1", fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
			require.NoError(t, err)
		}

		turns, err := repo.History(ctx, "s1", 0)
		require.NoError(t, err)
		require.Len(t, turns, 3)
		assert.Equal(t, "question 1", turns[0].UserMessage)
		assert.Equal(t, "answer 3", turns[2].BotResponse)
	})

	t.Run("limit 只保留最近的几轮", func(t *testing.T) {
		repo, _, _ := setupSessionRepo(t)

		for i := 1; i <= 5; i++ {
			require.NoError(t, repo.AppendTurn(ctx, "s2", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
		}

		turns, err := repo.History(ctx, "s2", 2)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		// 截断后仍是时间顺序，末尾是最新一轮
		assert.Equal(t, "q4", turns[0].UserMessage)
		assert.Equal(t, "q5", turns[1].UserMessage)
	})

	t.Run("不存在的会话返回空历史", func(t *testing.T) {
		repo, _, _ := setupSessionRepo(t)

		turns, err := repo.History(ctx, "missing", 10)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})

	t.Run("读取时归并独立单轮记录", func(t *testing.T) {
		repo, mr, _ := setupSessionRepo(t)

		require.NoError(t, repo.AppendTurn(ctx, "s3", "q1", "a1"))

		// 模拟降级路径遗留的独立单轮记录
		fb := model.FallbackTurn{
			SessionID:   "s3",
			UserMessage: "q0",
			BotResponse: "a0",
			Timestamp:   time.Now().UTC().Add(-time.Hour),
		}
		data, err := json.Marshal(fb)
		require.NoError(t, err)
		require.NoError(t, mr.Set(fmt.Sprintf("session:s3:turn:%d", fb.Timestamp.UnixNano()), string(data)))

		turns, err := repo.History(ctx, "s3", 0)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		// 单轮记录更早，归并后排在前面
		assert.Equal(t, "q0", turns[0].UserMessage)
		assert.Equal(t, "q1", turns[1].UserMessage)
	})

	t.Run("合并记录损坏时降级写入仍保留本轮", func(t *testing.T) {
		repo, mr, _ := setupSessionRepo(t)

		// 合并记录被写坏，追加走降级路径
		require.NoError(t, mr.Set("session:s4", "{not valid json"))
		require.NoError(t, repo.AppendTurn(ctx, "s4", "q1", "a1"))

		// 降级记录必须存在
		keys := mr.Keys()
		found := false
		for _, k := range keys {
			if k != "session:s4" && len(k) > len("session:s4") {
				found = true
			}
		}
		assert.True(t, found, "应当写入独立单轮记录")
	})

	t.Run("会话记录携带过期时间", func(t *testing.T) {
		repo, mr, _ := setupSessionRepo(t)

		require.NoError(t, repo.AppendTurn(ctx, "s5", "q", "a"))
		ttl := mr.TTL("session:s5")
		assert.Greater(t, ttl, time.Duration(0))
	})
}
