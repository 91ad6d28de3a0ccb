// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"qu-assist-go/internal/config"
	"qu-assist-go/internal/handler"
	"qu-assist-go/internal/middleware"
	"qu-assist-go/internal/pipeline"
	"qu-assist-go/internal/repository"
	"qu-assist-go/internal/service"
	"qu-assist-go/pkg/database"
	"qu-assist-go/pkg/es"
	"qu-assist-go/pkg/kafka"
	"qu-assist-go/pkg/llm"
	"qu-assist-go/pkg/log"
	"qu-assist-go/pkg/storage"
	"qu-assist-go/pkg/tika"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与外部依赖
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	minioClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("MinIO 初始化失败: %v", err)
	}
	esClient, err := es.NewClient(cfg.Elasticsearch)
	if err != nil {
		log.Fatalf("Elasticsearch 初始化失败: %v", err)
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	documentRepo := repository.NewDocumentRepository(database.DB)
	sessionRepo := repository.NewSessionRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	tikaClient := tika.NewClient(cfg.Tika)
	llmClient := llm.NewClient(cfg.LLM)
	processor := pipeline.NewProcessor(minioClient, tikaClient, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	searchService := service.NewSearchService(esClient, cfg.RAG.MaxSearchResults)
	conversationService := service.NewConversationService(sessionRepo)
	documentService := service.NewDocumentService(processor, documentRepo, esClient, minioClient)
	chatService := service.NewChatService(
		searchService,
		conversationService,
		llmClient,
		service.NewMemoryCache(),
		service.ChatOptions{
			MaxHistory:     cfg.RAG.MaxConversationHistory,
			MaxContextDocs: cfg.RAG.MaxContextDocuments,
			SnippetLength:  cfg.RAG.SnippetLength,
			Rules:          cfg.LLM.Prompt.Rules,
			NoResultText:   cfg.LLM.Prompt.NoResultText,
		},
	)

	// 6. 启动后台 Kafka 消费者处理重建索引任务
	go kafka.StartConsumer(cfg.Kafka, documentService)

	// 6.1 初始化导入 initfile 目录下的 PDF（文档 ID 取内容 MD5，重复导入幂等）
	go initSeedFiles(context.Background(), "initfile", documentService)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		chatHandler := handler.NewChatHandler(chatService, conversationService)
		chat := apiV1.Group("/chat")
		{
			chat.POST("", chatHandler.Chat)
			chat.GET("/history", chatHandler.History)
			chat.GET("/suggestions", chatHandler.Suggestions)
			chat.POST("/cache/clear", chatHandler.ClearCache)
		}

		documentHandler := handler.NewDocumentHandler(documentService)
		documents := apiV1.Group("/documents")
		{
			documents.POST("", documentHandler.Upload)
			documents.GET("", documentHandler.List)
			documents.GET("/statistics", documentHandler.Statistics)
			documents.DELETE("/:id", documentHandler.Delete)
			documents.POST("/:id/reindex", documentHandler.Reindex)
		}

		search := apiV1.Group("/search")
		{
			search.GET("", handler.NewSearchHandler(searchService).Search)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}

// initSeedFiles 扫描目录下的 PDF 并走标准入库流程导入。
// 文档 ID 由内容 MD5 派生，数据库写入是 upsert，重复执行安全。
func initSeedFiles(ctx context.Context, dir string, documentService service.DocumentService) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Infof("initSeedFiles: 目录 '%s' 不存在或不可用，跳过初始化导入", dir)
		return
	}

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			log.Warnf("initSeedFiles: 读取文件失败: %s, err=%v", path, readErr)
			return nil
		}
		result := documentService.ProcessAndStore(ctx, info.Name(), content)
		if !result.Success {
			log.Warnf("initSeedFiles: 导入失败: %s, message=%s", info.Name(), result.Message)
			return nil
		}
		log.Infof("initSeedFiles: 导入完成: %s (id=%s, chunks=%d)", info.Name(), result.DocumentID, result.ChunksCreated)
		return nil
	})
	if walkErr != nil {
		log.Warnf("initSeedFiles: 遍历目录发生错误: %v", walkErr)
	}
}
