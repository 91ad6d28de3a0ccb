package pipeline

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"qu-assist-go/internal/errs"
	"qu-assist-go/internal/model"
	"qu-assist-go/pkg/log"
)

// BlobStore 是处理器依赖的 blob 存储写入能力。
type BlobStore interface {
	PutDocument(ctx context.Context, fileName string, content []byte) (string, error)
}

// Extractor 是处理器依赖的逐页文本抽取能力。
type Extractor interface {
	ExtractPages(fileReader io.Reader, fileName string) ([]string, error)
}

// Processor 封装了文档处理的所有依赖和逻辑。
type Processor struct {
	blob      BlobStore
	extractor Extractor
	chunkSize int
	overlap   int
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(blob BlobStore, extractor Extractor, chunkSize, overlap int) *Processor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap <= 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}
	return &Processor{
		blob:      blob,
		extractor: extractor,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Process 是文档处理的主流程：blob 落盘 → 文本抽取 → 元数据分类 →
// 切块 → 组装 Document 记录。任一阶段失败则整体失败，不产生半成品。
// Document.ID 为原始字节的 MD5，相同文件重复处理得到相同 ID。
func (p *Processor) Process(ctx context.Context, fileName string, content []byte) (*model.Document, error) {
	log.Infof("[Processor] 开始处理文档, FileName: %s, Size: %d字节", fileName, len(content))

	// 1. 将原始字节写入 blob 存储（按日期分区的确定性路径）
	log.Info("[Processor] 步骤1: 写入 blob 存储")
	sourceFile, err := p.blob.PutDocument(ctx, fileName, content)
	if err != nil {
		log.Errorf("[Processor] 写入 blob 存储失败, FileName: %s, Error: %v", fileName, err)
		return nil, errs.Wrap(errs.KindUpload, fmt.Errorf("上传文档失败: %w", err))
	}
	log.Infof("[Processor] 步骤1: 写入成功, Object: %s", sourceFile)

	// 2. 逐页抽取文本
	log.Info("[Processor] 步骤2: 抽取文本内容")
	pageData, err := p.extractText(fileName, content)
	if err != nil {
		log.Errorf("[Processor] 文本抽取失败, FileName: %s, Error: %v", fileName, err)
		return nil, errs.Wrap(errs.KindExtraction, err)
	}
	log.Infof("[Processor] 步骤2: 抽取成功, 页数: %d, 内容长度: %d 字符",
		pageData.PageCount, utf8.RuneCountInString(pageData.FullText))

	// 3. 大学领域元数据抽取与类型分类
	log.Info("[Processor] 步骤3: 抽取领域元数据")
	meta := ExtractMetadata(pageData.FullText)
	log.Infof("[Processor] 步骤3: 分类完成, DocumentType: %s", meta.DocumentType)

	// 4. 文本切块
	log.Infof("[Processor] 步骤4: 进行文本切块, chunkSize: %d, overlap: %d", p.chunkSize, p.overlap)
	chunks := ChunkText(pageData.FullText, p.chunkSize, p.overlap)
	if len(chunks) == 0 {
		log.Warnf("[Processor] 未生成任何文本切块, 处理中止, FileName: %s", fileName)
		return nil, errs.Wrapf(errs.KindExtraction, "未生成任何文本切块")
	}
	log.Infof("[Processor] 步骤4: 切块完成, 共生成 %d 个切块", len(chunks))

	// 5. 组装权威记录；页级元数据与分类元数据合并，分类键优先
	doc := &model.Document{
		ID:           fmt.Sprintf("%x", md5.Sum(content)),
		Title:        fileName,
		Content:      pageData.FullText,
		DocumentType: meta.DocumentType,
		Metadata:     mergeMetadata(pageData, meta),
		SourceFile:   sourceFile,
		PageCount:    pageData.PageCount,
		Chunks:       chunks,
		Processed:    true,
		CreatedAt:    time.Now().UTC(),
	}

	log.Infof("[Processor] 文档处理成功, DocumentID: %s, Chunks: %d", doc.ID, len(doc.Chunks))
	return doc, nil
}

// extractText 调用抽取器获取逐页文本，并计算页级元数据。
func (p *Processor) extractText(fileName string, content []byte) (*model.PageData, error) {
	pages, err := p.extractor.ExtractPages(bytes.NewReader(content), fileName)
	if err != nil {
		return nil, fmt.Errorf("抽取文本失败: %w", err)
	}

	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page)
		sb.WriteString("\n")
	}
	fullText := sb.String()
	if strings.TrimSpace(fullText) == "" {
		return nil, fmt.Errorf("抽取的文本内容为空")
	}

	return &model.PageData{
		FullText:    fullText,
		PageTexts:   pages,
		PageCount:   len(pages),
		ContentHash: fmt.Sprintf("%x", md5.Sum([]byte(fullText))),
	}, nil
}

// mergeMetadata 合并页级抽取元数据与分类元数据，键冲突时分类结果覆盖。
func mergeMetadata(pageData *model.PageData, meta model.DocumentMeta) map[string]interface{} {
	merged := map[string]interface{}{
		"page_count":   pageData.PageCount,
		"content_hash": pageData.ContentHash,
	}
	merged["document_type"] = meta.DocumentType
	merged["departments"] = meta.Departments
	merged["services"] = meta.Services
	merged["contact_info"] = meta.ContactInfo
	return merged
}
