// Package service 提供了检索相关的业务逻辑。
package service

import (
	"context"
	"fmt"
	"sort"

	"qu-assist-go/internal/model"
	"qu-assist-go/pkg/log"
)

// DefaultMaxSearchResults 是文档级结果数量上限的默认值。
const DefaultMaxSearchResults = 5

// Searcher 是检索服务依赖的切块级查询能力（由搜索引擎客户端实现）。
type Searcher interface {
	Search(ctx context.Context, query, documentType string, top int) ([]model.SearchHit, error)
}

// SearchService 接口定义了检索操作。
type SearchService interface {
	// Retrieve 执行混合检索并把切块命中聚合为文档级结果，
	// 按 max_score 降序返回最多 K 条。
	Retrieve(ctx context.Context, query, documentType string) ([]model.DocumentResult, error)
}

type searchService struct {
	searcher   Searcher
	maxResults int
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(searcher Searcher, maxResults int) SearchService {
	if maxResults <= 0 {
		maxResults = DefaultMaxSearchResults
	}
	return &searchService{
		searcher:   searcher,
		maxResults: maxResults,
	}
}

// Retrieve 执行两级聚合检索：先拿到切块级命中，再按 document_id 分组，
// 避免单个文档的多条切块命中挤掉其他相关文档，保证给生成阶段的
// 上下文覆盖多个来源。
func (s *searchService) Retrieve(ctx context.Context, query, documentType string) ([]model.DocumentResult, error) {
	enhanced := enhanceQuery(query, documentType)
	log.Infof("[SearchService] 开始检索, query: '%s', enhanced: '%s', type: '%s'", query, enhanced, documentType)

	hits, err := s.searcher.Search(ctx, enhanced, documentType, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("搜索引擎查询失败: %w", err)
	}
	log.Infof("[SearchService] 搜索引擎返回 %d 条切块命中", len(hits))

	results := aggregateHits(hits)

	// 稳定排序：max_score 相同的文档保持首次出现的先后顺序
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MaxScore > results[j].MaxScore
	})

	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}

	log.Infof("[SearchService] 聚合为 %d 条文档级结果", len(results))
	return results, nil
}

// aggregateHits 按 document_id 分组切块命中。每组的标题/类型/来源取
// 首条命中（同一文档的所有命中共享这些字段），max_score 为组内最高分。
// 分组顺序保持命中流中文档首次出现的顺序。
func aggregateHits(hits []model.SearchHit) []model.DocumentResult {
	results := make([]model.DocumentResult, 0)
	index := make(map[string]int)

	for _, hit := range hits {
		i, ok := index[hit.DocumentID]
		if !ok {
			i = len(results)
			index[hit.DocumentID] = i
			results = append(results, model.DocumentResult{
				DocumentID:   hit.DocumentID,
				Title:        hit.Title,
				DocumentType: hit.DocumentType,
				SourceFile:   hit.SourceFile,
			})
		}
		results[i].Chunks = append(results[i].Chunks, model.ChunkHit{
			Content:    hit.Content,
			Score:      hit.Score,
			ChunkIndex: hit.ChunkIndex,
		})
		if hit.Score > results[i].MaxScore {
			results[i].MaxScore = hit.Score
		}
	}
	return results
}

// enhanceQuery 在查询前加上固定的院校上下文前缀，并在指定类型过滤时
// 追加类型提示，提升关键词召回而不改变语义。
func enhanceQuery(query, documentType string) string {
	enhanced := "Qatar University " + query
	if documentType != "" {
		enhanced += " " + documentType + " document"
	}
	return enhanced
}
