package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"qu-assist-go/internal/service"
	"qu-assist-go/pkg/kafka"
	"qu-assist-go/pkg/log"
	"qu-assist-go/pkg/tasks"
)

// maxUploadSize 限制单次上传文件大小为 50MB。
const maxUploadSize = 50 << 20

// DocumentHandler 结构体定义了文档管理相关的处理器。
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload 接收一个 PDF 文件，走完整的入库流水线：
// 对象存储 -> 文本抽取 -> 分块 -> 元数据分类 -> MySQL -> ES 索引。
// 流水线内部的失败以结构化结果返回，HTTP 层面仍是 200。
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请选择要上传的文件"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "仅支持 PDF 文件"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "文件大小超过限制"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("[DocumentHandler] 打开上传文件失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Errorf("[DocumentHandler] 读取上传文件失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
		return
	}

	log.Infof("[DocumentHandler] 收到上传请求, file: %s, size: %d", fileHeader.Filename, fileHeader.Size)
	result := h.documentService.ProcessAndStore(c.Request.Context(), fileHeader.Filename, content)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": result})
}

// List 列出对象存储中已上传的文档文件。
func (h *DocumentHandler) List(c *gin.Context) {
	objects, err := h.documentService.ListStoredObjects(c.Request.Context())
	if err != nil {
		log.Errorf("[DocumentHandler] 列出存储对象失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取文档列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": objects})
}

// Delete 删除指定文档及其全部索引分块。
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少文档 ID"})
		return
	}
	if err := h.documentService.Delete(c.Request.Context(), documentID); err != nil {
		log.Errorf("[DocumentHandler] 删除文档失败, id: %s, error: %v", documentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除文档失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "删除成功"})
}

// Reindex 将重建索引任务投递到 Kafka，由消费者异步执行。
func (h *DocumentHandler) Reindex(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少文档 ID"})
		return
	}
	if err := kafka.ProduceReindexTask(tasks.ReindexTask{DocumentID: documentID}); err != nil {
		log.Errorf("[DocumentHandler] 投递重建索引任务失败, id: %s, error: %v", documentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "提交重建索引任务失败"})
		return
	}
	log.Infof("[DocumentHandler] 重建索引任务已投递, id: %s", documentID)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "重建索引任务已提交"})
}

// Statistics 返回知识库文档统计信息。
func (h *DocumentHandler) Statistics(c *gin.Context) {
	stats, err := h.documentService.Statistics()
	if err != nil {
		log.Errorf("[DocumentHandler] 获取统计信息失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取统计信息失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": stats})
}
