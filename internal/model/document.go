// Package model 包含了应用的数据模型定义。
package model

import "time"

// 文档类型的封闭集合，分类器按优先级顺序从中选取一个。
const (
	DocTypeAdmissions = "admissions"
	DocTypeAcademic   = "academic"
	DocTypePolicy     = "policy"
	DocTypeService    = "service"
	DocTypeGeneral    = "general"
)

// Chunk 代表文档正文中一段连续的文本切块，是索引与检索的基本单位。
// StartChar/EndChar 是切块在全文中的字符（rune）偏移，左闭右开。
type Chunk struct {
	Content    string `json:"content"`
	ChunkIndex int    `json:"chunk_index"`
	StartChar  int    `json:"start_char"`
	EndChar    int    `json:"end_char"`
	ChunkSize  int    `json:"chunk_size"` // 去除首尾空白后的字符数
	WordCount  int    `json:"word_count"`
}

// Document 对应于数据库中的 documents 表，是文档的权威记录。
// ID 为原始文件字节的 MD5 摘要，相同内容重复入库得到相同 ID（幂等去重键）。
type Document struct {
	ID           string                 `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Title        string                 `gorm:"type:varchar(255);not null" json:"title"`
	Content      string                 `gorm:"type:longtext" json:"content"`
	DocumentType string                 `gorm:"type:varchar(32);index;not null" json:"document_type"`
	Metadata     map[string]interface{} `gorm:"serializer:json;type:json" json:"metadata"`
	SourceFile   string                 `gorm:"type:varchar(255)" json:"source_file"`
	PageCount    int                    `gorm:"not null;default:0" json:"page_count"`
	Chunks       []Chunk                `gorm:"serializer:json;type:json" json:"chunks"`
	Processed    bool                   `gorm:"not null;default:true" json:"processed"`
	CreatedAt    time.Time              `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Document) TableName() string {
	return "documents"
}

// DocumentMeta 是元数据抽取器对全文的分类结果。
// ContactInfo 为邮箱与电话两次独立扫描的简单拼接，不去重。
type DocumentMeta struct {
	DocumentType string   `json:"document_type"`
	Departments  []string `json:"departments"`
	Services     []string `json:"services"`
	ContactInfo  []string `json:"contact_info"`
}

// PageData 是文本抽取阶段的输出：逐页文本加页级元数据。
type PageData struct {
	FullText    string
	PageTexts   []string
	PageCount   int
	ContentHash string
}
