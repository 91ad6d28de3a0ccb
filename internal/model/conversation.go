// Package model 包含了应用的数据模型定义。
package model

import "time"

// Turn 代表一次完整的问答交互（用户消息 + 助手回复）。
type Turn struct {
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
}

// SessionRecord 是存储在 Redis 中的会话合并记录：单个键下保存该会话
// 按时间顺序追加的全部轮次。MessageCount 在每次成功写入后与
// len(Turns) 保持一致。
type SessionRecord struct {
	SessionID    string    `json:"session_id"`
	Turns        []Turn    `json:"conversation_history"`
	CreatedAt    time.Time `json:"created_at"`
	LastUpdated  time.Time `json:"last_updated"`
	MessageCount int       `json:"message_count"`
}

// FallbackTurn 是降级写入路径产生的独立单轮记录。
// 读取时会与合并记录透明归并，保证两种写入形态互不破坏。
type FallbackTurn struct {
	SessionID   string    `json:"session_id"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
}
