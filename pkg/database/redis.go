package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"qu-assist-go/pkg/log"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接。
// Redis 同时承载会话历史存储与 Kafka 任务的失败计数。
func InitRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 启动时做一次带超时的连通性检查，连不上直接退出
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Info("Redis client connected successfully")
}
