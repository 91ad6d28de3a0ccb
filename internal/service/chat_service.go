package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"qu-assist-go/internal/errs"
	"qu-assist-go/internal/model"
	"qu-assist-go/pkg/llm"
	"qu-assist-go/pkg/log"
)

// noResultText 是检索无命中时填入文档上下文的固定文案。
const noResultText = "No relevant documents found in the knowledge base."

// ChatOptions 配置编排器的上下文组装参数。
type ChatOptions struct {
	// MaxHistory 组装会话上下文时取最近多少轮。
	MaxHistory int
	// MaxContextDocs 文档上下文最多引用多少条聚合结果。
	MaxContextDocs int
	// SnippetLength 每条结果取首个切块的前多少个字符。
	SnippetLength int
	// Rules 是系统提示的固定规则文本。
	Rules string
	// NoResultText 是检索无命中时填入文档上下文的固定文案。
	NoResultText string
}

// ChatService 定义了问答编排操作。
type ChatService interface {
	// GenerateResponse 执行完整的 RAG 回答流程并返回结构化结果。
	// 任何阶段的失败都在此边界转换为 Success=false 的结果，不向外抛错。
	GenerateResponse(ctx context.Context, message, sessionID, documentType string) *model.ChatResult
	// ClearCache 整体清空回答缓存。
	ClearCache()
}

type chatService struct {
	searchService SearchService
	convoService  ConversationService
	llmClient     llm.Client
	cache         ResponseCache
	opts          ChatOptions
}

// NewChatService 创建一个新的 ChatService 实例。缓存实例由编排器持有。
func NewChatService(
	searchService SearchService,
	convoService ConversationService,
	llmClient llm.Client,
	cache ResponseCache,
	opts ChatOptions,
) ChatService {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = 10
	}
	if opts.MaxContextDocs <= 0 {
		opts.MaxContextDocs = 3
	}
	if opts.SnippetLength <= 0 {
		opts.SnippetLength = 500
	}
	if opts.NoResultText == "" {
		opts.NoResultText = noResultText
	}
	return &chatService{
		searchService: searchService,
		convoService:  convoService,
		llmClient:     llmClient,
		cache:         cache,
		opts:          opts,
	}
}

// GenerateResponse 的流程是线性的六个阶段：缓存查找 → 检索 →
// 文档上下文 → 会话上下文 → 生成 → 持久化与缓存写入。
// 缓存键是逐字的 (message, documentType) 对，刻意不做大小写/空白归一化，
// 只优化完全相同的重复提问。
func (s *chatService) GenerateResponse(ctx context.Context, message, sessionID, documentType string) *model.ChatResult {
	if sessionID == "" {
		// generate session id using timestamp (avoid heavy deps)
		sessionID = fmt.Sprintf("session-%d", time.Now().UnixNano())
	}

	cacheKey := message + "_" + documentType
	if cached, ok := s.cache.Get(cacheKey); ok {
		log.Infof("[ChatService] 缓存命中, key: '%s'", cacheKey)
		hit := *cached
		hit.Cached = true
		return &hit
	}

	// 1. 检索文档级上下文（查询增强在检索服务内部完成）
	results, err := s.searchService.Retrieve(ctx, message, documentType)
	if err != nil {
		log.Errorf("[ChatService] 检索失败: %v", err)
		return s.failure(sessionID, fmt.Sprintf("Failed to retrieve context: %v", err))
	}

	// 2. 组装文档上下文与会话上下文
	documentContext := s.buildDocumentContext(results)
	conversationContext := s.buildConversationContext(ctx, sessionID)

	// 3. 组装单条系统提示并调用生成服务
	systemPrompt := s.composeSystemPrompt(documentContext, conversationContext)
	answer, err := s.llmClient.Complete(ctx, systemPrompt, message)
	if err != nil {
		genErr := errs.Wrap(errs.KindGeneration, err)
		log.Errorf("[ChatService] 生成失败: %v", genErr)
		return s.failure(sessionID, fmt.Sprintf("Failed to generate response: %v", err))
	}

	// 4. 持久化本轮问答；使用原始（未增强的）用户消息。
	// 会话写入失败已在存储层降级处理，这里不让它拖垮整个回答。
	if err := s.convoService.AppendTurn(ctx, sessionID, message, answer); err != nil {
		log.Errorf("[ChatService] 保存会话历史失败: %v", err)
	}

	result := &model.ChatResult{
		Success:          true,
		Response:         answer,
		SessionID:        sessionID,
		ContextDocuments: len(results),
		Sources:          buildSources(results, s.opts.MaxContextDocs),
		Timestamp:        time.Now().UTC(),
		Cached:           false,
	}

	s.cache.Put(cacheKey, result)
	return result
}

func (s *chatService) ClearCache() {
	s.cache.Clear()
}

func (s *chatService) failure(sessionID, message string) *model.ChatResult {
	return &model.ChatResult{
		Success:   false,
		SessionID: sessionID,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// buildDocumentContext 把最多 MaxContextDocs 条聚合结果拼接为上下文：
// 每条取标题、类型与首个切块的前 SnippetLength 个字符。
func (s *chatService) buildDocumentContext(results []model.DocumentResult) string {
	if len(results) == 0 {
		return s.opts.NoResultText
	}

	var sb strings.Builder
	limit := s.opts.MaxContextDocs
	if len(results) < limit {
		limit = len(results)
	}
	for i := 0; i < limit; i++ {
		doc := results[i]
		sb.WriteString(fmt.Sprintf("Document %d: %s\n", i+1, doc.Title))
		sb.WriteString(fmt.Sprintf("Type: %s\n", doc.DocumentType))
		snippet := ""
		if len(doc.Chunks) > 0 {
			snippet = truncateRunes(doc.Chunks[0].Content, s.opts.SnippetLength)
		}
		sb.WriteString(fmt.Sprintf("Content: %s...\n", snippet))
		sb.WriteString("---\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// buildConversationContext 读取会话最近几轮并拼接为历史上下文。
// 历史读取失败只降级为空上下文，不中断回答。
func (s *chatService) buildConversationContext(ctx context.Context, sessionID string) string {
	history, err := s.convoService.History(ctx, sessionID, s.opts.MaxHistory)
	if err != nil {
		log.Errorf("[ChatService] 读取会话历史失败: %v", err)
		return ""
	}
	if len(history) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Previous conversation:")
	for _, turn := range history {
		sb.WriteString(fmt.Sprintf("\nUser: %s", turn.UserMessage))
		sb.WriteString(fmt.Sprintf("\nAssistant: %s", turn.BotResponse))
	}
	return sb.String()
}

// composeSystemPrompt 组装系统提示：固定规则 + 文档上下文（若有命中）
// + 会话上下文（若有历史）。
func (s *chatService) composeSystemPrompt(documentContext, conversationContext string) string {
	var sb strings.Builder
	sb.WriteString(s.opts.Rules)
	if documentContext != "" && documentContext != s.opts.NoResultText {
		sb.WriteString("\n\nRelevant Qatar University Information:\n")
		sb.WriteString(documentContext)
	}
	if conversationContext != "" {
		sb.WriteString("\n\n")
		sb.WriteString(conversationContext)
	}
	return sb.String()
}

// buildSources 提取前 limit 条结果的出处引用。
func buildSources(results []model.DocumentResult, limit int) []model.SourceRef {
	if len(results) < limit {
		limit = len(results)
	}
	sources := make([]model.SourceRef, 0, limit)
	for _, doc := range results[:limit] {
		sources = append(sources, model.SourceRef{
			Title:          doc.Title,
			DocumentType:   doc.DocumentType,
			RelevanceScore: doc.MaxScore,
		})
	}
	return sources
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
