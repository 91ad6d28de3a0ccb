// Package model 定义了与搜索索引交互的数据结构。
package model

import "time"

// EsChunk 代表存储在 Elasticsearch 中的切块记录。
// 它是 Chunk 与所属 Document 字段的反规范化投影，ID 格式为
// {document_id}_chunk_{chunk_index}。索引只是读优化的副本，MySQL 中的
// Document 才是权威数据。
type EsChunk struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"document_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	DocumentType string    `json:"document_type"`
	SourceFile   string    `json:"source_file"`
	CreatedAt    time.Time `json:"created_at"`
	ChunkIndex   int       `json:"chunk_index"`
}

// SearchHit 是一次查询返回的单条切块级命中，不落库。
// Score 的量纲由搜索引擎定义，这里不做归一化。
type SearchHit struct {
	ID           string  `json:"id"`
	DocumentID   string  `json:"document_id"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	DocumentType string  `json:"document_type"`
	SourceFile   string  `json:"source_file"`
	ChunkIndex   int     `json:"chunk_index"`
	Score        float64 `json:"score"`
}

// ChunkHit 是聚合结果中附带得分的切块。
type ChunkHit struct {
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
}

// DocumentResult 是检索服务的输出单位：把同一文档的多条切块命中
// 聚合为一条文档级结果，MaxScore 为其中的最高得分。
type DocumentResult struct {
	DocumentID   string     `json:"document_id"`
	Title        string     `json:"title"`
	DocumentType string     `json:"document_type"`
	SourceFile   string     `json:"source_file"`
	Chunks       []ChunkHit `json:"chunks"`
	MaxScore     float64    `json:"max_score"`
}
