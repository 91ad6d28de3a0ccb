// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"qu-assist-go/internal/errs"
	"qu-assist-go/internal/model"
	"qu-assist-go/pkg/log"
)

// sessionTTL 是会话记录自最后一次写入起的存活时间。
const sessionTTL = 30 * 24 * time.Hour

// SessionRepository 定义了会话日志的追加与读取接口。
type SessionRepository interface {
	// AppendTurn 向会话追加一轮问答。合并路径失败时降级为独立单轮记录。
	AppendTurn(ctx context.Context, sessionID, userMessage, botResponse string) error
	// History 按时间顺序返回会话最近 limit 轮；limit <= 0 表示不截断。
	History(ctx context.Context, sessionID string, limit int) ([]model.Turn, error)
}

type redisSessionRepository struct {
	redisClient *redis.Client
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
func NewSessionRepository(redisClient *redis.Client) SessionRepository {
	return &redisSessionRepository{redisClient: redisClient}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func fallbackKey(sessionID string, ts time.Time) string {
	return fmt.Sprintf("session:%s:turn:%d", sessionID, ts.UnixNano())
}

// AppendTurn 以读-改-写方式向合并记录追加一轮。
// 同一会话并发追加时为 last-writer-wins，竞争失败的一方会丢失一轮——
// 这是已知限制，这里不引入锁来纠正。
func (r *redisSessionRepository) AppendTurn(ctx context.Context, sessionID, userMessage, botResponse string) error {
	now := time.Now().UTC()
	turn := model.Turn{
		UserMessage: userMessage,
		BotResponse: botResponse,
		Timestamp:   now,
	}

	if err := r.appendConsolidated(ctx, sessionID, turn, now); err != nil {
		log.Warnf("[SessionRepository] 合并写入失败, 降级为独立单轮记录, SessionID: %s, Error: %v", sessionID, err)
		if fbErr := r.writeFallbackTurn(ctx, sessionID, turn); fbErr != nil {
			return errs.Wrap(errs.KindPersistence, fmt.Errorf("降级写入也失败: %w", fbErr))
		}
	}
	return nil
}

func (r *redisSessionRepository) appendConsolidated(ctx context.Context, sessionID string, turn model.Turn, now time.Time) error {
	key := sessionKey(sessionID)

	jsonData, err := r.redisClient.Get(ctx, key).Result()
	var record model.SessionRecord
	switch {
	case err == redis.Nil:
		record = model.SessionRecord{
			SessionID: sessionID,
			CreatedAt: now,
		}
	case err != nil:
		return fmt.Errorf("读取会话记录失败: %w", err)
	default:
		if err := json.Unmarshal([]byte(jsonData), &record); err != nil {
			return fmt.Errorf("解析会话记录失败: %w", err)
		}
	}

	record.Turns = append(record.Turns, turn)
	record.LastUpdated = now
	record.MessageCount = len(record.Turns)

	out, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化会话记录失败: %w", err)
	}
	if err := r.redisClient.Set(ctx, key, out, sessionTTL).Err(); err != nil {
		return fmt.Errorf("写回会话记录失败: %w", err)
	}
	return nil
}

// writeFallbackTurn 写入独立的单轮记录；历史会因此碎片化，
// 但这一轮不会丢失。读取路径会透明归并两种记录形态。
func (r *redisSessionRepository) writeFallbackTurn(ctx context.Context, sessionID string, turn model.Turn) error {
	fb := model.FallbackTurn{
		SessionID:   sessionID,
		UserMessage: turn.UserMessage,
		BotResponse: turn.BotResponse,
		Timestamp:   turn.Timestamp,
	}
	out, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("序列化单轮记录失败: %w", err)
	}
	return r.redisClient.Set(ctx, fallbackKey(sessionID, turn.Timestamp), out, sessionTTL).Err()
}

// History 读取合并记录，并归并所有遗留的独立单轮记录，
// 按时间戳稳定排序后返回时间顺序（非倒序）的最近 limit 轮。
func (r *redisSessionRepository) History(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	var turns []model.Turn

	jsonData, err := r.redisClient.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("读取会话记录失败: %w", err)
	}
	if err == nil {
		var record model.SessionRecord
		if uErr := json.Unmarshal([]byte(jsonData), &record); uErr != nil {
			return nil, fmt.Errorf("解析会话记录失败: %w", uErr)
		}
		turns = append(turns, record.Turns...)
	}

	fallbackTurns, err := r.readFallbackTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	turns = append(turns, fallbackTurns...)

	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].Timestamp.Before(turns[j].Timestamp)
	})

	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (r *redisSessionRepository) readFallbackTurns(ctx context.Context, sessionID string) ([]model.Turn, error) {
	keys, err := r.redisClient.Keys(ctx, fmt.Sprintf("session:%s:turn:*", sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("扫描单轮记录失败: %w", err)
	}

	var turns []model.Turn
	for _, k := range keys {
		data, getErr := r.redisClient.Get(ctx, k).Result()
		if getErr != nil {
			continue
		}
		var fb model.FallbackTurn
		if uErr := json.Unmarshal([]byte(data), &fb); uErr != nil {
			continue
		}
		turns = append(turns, model.Turn{
			UserMessage: fb.UserMessage,
			BotResponse: fb.BotResponse,
			Timestamp:   fb.Timestamp,
		})
	}
	return turns, nil
}
