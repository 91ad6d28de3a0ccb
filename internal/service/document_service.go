package service

import (
	"context"
	"fmt"
	"time"

	"qu-assist-go/internal/errs"
	"qu-assist-go/internal/model"
	"qu-assist-go/internal/pipeline"
	"qu-assist-go/internal/repository"
	"qu-assist-go/pkg/log"
	"qu-assist-go/pkg/tasks"
)

// ChunkIndexer 是文档服务依赖的索引写入能力（由搜索引擎客户端实现）。
type ChunkIndexer interface {
	IndexChunks(ctx context.Context, doc *model.Document) error
	DeleteByDocumentID(ctx context.Context, documentID string) error
}

// BlobLister 是文档服务依赖的 blob 对象列表能力。
type BlobLister interface {
	ListDocuments(ctx context.Context) ([]model.StoredObject, error)
}

// DocumentService 定义了文档入库、统计与管理操作。
type DocumentService interface {
	// ProcessAndStore 执行完整入库流程并返回结构化结果，不抛裸错误。
	ProcessAndStore(ctx context.Context, fileName string, content []byte) *model.ProcessResult
	Statistics() (*model.Statistics, error)
	ListStoredObjects(ctx context.Context) ([]model.StoredObject, error)
	Delete(ctx context.Context, documentID string) error
	// Reindex 从权威记录重建一个文档的索引条目（Kafka 消费路径）。
	Reindex(ctx context.Context, task tasks.ReindexTask) error
}

type documentService struct {
	processor *pipeline.Processor
	docRepo   repository.DocumentRepository
	indexer   ChunkIndexer
	blob      BlobLister
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(
	processor *pipeline.Processor,
	docRepo repository.DocumentRepository,
	indexer ChunkIndexer,
	blob BlobLister,
) DocumentService {
	return &documentService{
		processor: processor,
		docRepo:   docRepo,
		indexer:   indexer,
		blob:      blob,
	}
}

// ProcessAndStore 处理文档并依次写入权威存储与搜索索引。
// 索引失败时文档已入库但不可检索：结果如实上报，不自动重试。
func (s *documentService) ProcessAndStore(ctx context.Context, fileName string, content []byte) *model.ProcessResult {
	doc, err := s.processor.Process(ctx, fileName, content)
	if err != nil {
		log.Errorf("[DocumentService] 文档处理失败, FileName: %s, Error: %v", fileName, err)
		return &model.ProcessResult{
			Success: false,
			Message: fmt.Sprintf("Failed to process document: %v", err),
		}
	}

	if err := s.docRepo.Save(doc); err != nil {
		log.Errorf("[DocumentService] 文档入库失败, DocumentID: %s, Error: %v", doc.ID, err)
		return &model.ProcessResult{
			Success: false,
			Message: fmt.Sprintf("Failed to store document: %v", err),
		}
	}

	// 先清理旧的索引条目再写入，保证重复入库不产生残留切块
	if err := s.indexer.DeleteByDocumentID(ctx, doc.ID); err != nil {
		log.Warnf("[DocumentService] 清理旧索引条目失败 (document_id=%s): %v", doc.ID, err)
	}
	if err := s.indexer.IndexChunks(ctx, doc); err != nil {
		log.Errorf("[DocumentService] 索引写入失败, DocumentID: %s, Error: %v", doc.ID, errs.Wrap(errs.KindIndexing, err))
		return &model.ProcessResult{
			Success:    false,
			DocumentID: doc.ID,
			Message:    fmt.Sprintf("Document stored but indexing failed: %v", err),
		}
	}

	log.Infof("[DocumentService] 文档入库成功, DocumentID: %s, Chunks: %d", doc.ID, len(doc.Chunks))
	return &model.ProcessResult{
		Success:       true,
		DocumentID:    doc.ID,
		Title:         doc.Title,
		DocumentType:  doc.DocumentType,
		ChunksCreated: len(doc.Chunks),
		Message:       fmt.Sprintf("Document '%s' processed and stored successfully", doc.Title),
	}
}

// Statistics 返回知识库的文档总数与分类型计数。
func (s *documentService) Statistics() (*model.Statistics, error) {
	counts, err := s.docRepo.CountByType()
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return &model.Statistics{
		TotalDocuments: total,
		ByType:         counts,
		LastUpdated:    time.Now().UTC(),
	}, nil
}

// ListStoredObjects 列出 blob 存储中的全部文档对象。
func (s *documentService) ListStoredObjects(ctx context.Context) ([]model.StoredObject, error) {
	return s.blob.ListDocuments(ctx)
}

// Delete 删除文档的权威记录与全部索引条目。
func (s *documentService) Delete(ctx context.Context, documentID string) error {
	if err := s.docRepo.DeleteByID(documentID); err != nil {
		return err
	}
	return s.indexer.DeleteByDocumentID(ctx, documentID)
}

// Reindex 读取权威记录并重建其索引条目。
func (s *documentService) Reindex(ctx context.Context, task tasks.ReindexTask) error {
	doc, err := s.docRepo.FindByID(task.DocumentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("文档不存在: %s", task.DocumentID)
	}

	if err := s.indexer.DeleteByDocumentID(ctx, doc.ID); err != nil {
		return fmt.Errorf("清理旧索引条目失败: %w", err)
	}
	if err := s.indexer.IndexChunks(ctx, doc); err != nil {
		return fmt.Errorf("重建索引失败: %w", err)
	}
	log.Infof("[DocumentService] 重建索引完成, DocumentID: %s, Chunks: %d", doc.ID, len(doc.Chunks))
	return nil
}
