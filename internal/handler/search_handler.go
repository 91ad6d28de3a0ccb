package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qu-assist-go/internal/service"
	"qu-assist-go/pkg/log"
)

// SearchHandler 结构体定义了知识库检索相关的处理器。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search 按关键词在知识库中检索，返回按文档聚合后的结果。
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少查询参数 q"})
		return
	}
	documentType := c.Query("type")

	results, err := h.searchService.Retrieve(c.Request.Context(), query, documentType)
	if err != nil {
		log.Errorf("[SearchHandler] 检索失败, query: '%s', error: %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "检索失败"})
		return
	}

	// top_k 只在服务端上限内进一步收窄结果数
	if topK, convErr := strconv.Atoi(c.DefaultQuery("top_k", "0")); convErr == nil && topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"query":   query,
			"total":   len(results),
			"results": results,
		},
	})
}
