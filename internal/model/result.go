// Package model 定义了核心操作返回的结构化结果。
package model

import "time"

// ProcessResult 是文档入库操作的结构化结果。
// 入库失败不会以裸错误形式穿出核心边界。
type ProcessResult struct {
	Success       bool   `json:"success"`
	DocumentID    string `json:"document_id,omitempty"`
	Title         string `json:"title,omitempty"`
	DocumentType  string `json:"type,omitempty"`
	ChunksCreated int    `json:"chunks_created,omitempty"`
	Message       string `json:"message"`
}

// SourceRef 描述一条回答引用的文档来源。
type SourceRef struct {
	Title          string  `json:"title"`
	DocumentType   string  `json:"type"`
	RelevanceScore float64 `json:"relevance_score"`
}

// ChatResult 是问答编排器返回的结构化结果，携带回答出处与缓存标记。
type ChatResult struct {
	Success          bool        `json:"success"`
	Response         string      `json:"response,omitempty"`
	SessionID        string      `json:"session_id,omitempty"`
	ContextDocuments int         `json:"context_documents"`
	Sources          []SourceRef `json:"document_sources,omitempty"`
	Timestamp        time.Time   `json:"timestamp"`
	Cached           bool        `json:"cached"`
	Message          string      `json:"message,omitempty"`
}

// Statistics 汇总了知识库中已存文档的数量信息。
type Statistics struct {
	TotalDocuments int            `json:"total_documents"`
	ByType         map[string]int `json:"by_type"`
	LastUpdated    time.Time      `json:"last_updated"`
}

// StoredObject 是 blob 存储中一个对象的列表项。
type StoredObject struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}
