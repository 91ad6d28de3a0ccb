// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qu-assist-go/internal/service"
	"qu-assist-go/pkg/log"
)

// ChatHandler 结构体定义了问答相关的处理器。
type ChatHandler struct {
	chatService  service.ChatService
	convoService service.ConversationService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService, convoService service.ConversationService) *ChatHandler {
	return &ChatHandler{
		chatService:  chatService,
		convoService: convoService,
	}
}

// chatRequest 是问答接口的请求体。
type chatRequest struct {
	Message      string `json:"message" binding:"required"`
	SessionID    string `json:"session_id"`
	DocumentType string `json:"document_type"`
}

// Chat 处理一次问答请求。核心的失败同样以结构化结果返回（HTTP 200），
// 不向调用方抛裸错误。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}
	log.Infof("[ChatHandler] 收到问答请求, session: '%s', type: '%s'", req.SessionID, req.DocumentType)

	result := h.chatService.GenerateResponse(c.Request.Context(), req.Message, req.SessionID, req.DocumentType)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": result})
}

// History 返回指定会话的历史轮次（时间顺序）。
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 session_id 参数"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		limit = 0
	}

	turns, err := h.convoService.History(c.Request.Context(), sessionID, limit)
	if err != nil {
		log.Errorf("[ChatHandler] 读取会话历史失败, session: %s, error: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取会话历史失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": turns})
}

// Suggestions 返回推荐问题列表，可按文档类型定制。
func (h *ChatHandler) Suggestions(c *gin.Context) {
	documentType := c.Query("type")
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    service.Suggestions(documentType),
	})
}

// ClearCache 整体清空回答缓存。
func (h *ChatHandler) ClearCache(c *gin.Context) {
	h.chatService.ClearCache()
	log.Info("[ChatHandler] 回答缓存已清空")
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "缓存已清空"})
}
