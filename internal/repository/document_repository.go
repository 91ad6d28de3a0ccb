// Package repository 提供了数据访问层的实现。
package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qu-assist-go/internal/model"
)

// DocumentRepository 定义了文档权威记录的操作接口。
type DocumentRepository interface {
	Save(doc *model.Document) error
	FindByID(id string) (*model.Document, error)
	Search(query, documentType string) ([]model.Document, error)
	CountByType() (map[string]int, error)
	DeleteByID(id string) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Save 写入文档记录。ID 为内容指纹，相同字节重复入库时覆盖旧记录（幂等）。
func (r *documentRepository) Save(doc *model.Document) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(doc).Error
	if err != nil {
		return fmt.Errorf("保存文档记录失败: %w", err)
	}
	return nil
}

// FindByID 按 ID 查找文档，不存在时返回 (nil, nil)。
func (r *documentRepository) FindByID(id string) (*model.Document, error) {
	var doc model.Document
	err := r.db.Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询文档记录失败: %w", err)
	}
	return &doc, nil
}

// Search 对文档正文做子串匹配，可选按类型过滤，按创建时间倒序返回。
func (r *documentRepository) Search(query, documentType string) ([]model.Document, error) {
	db := r.db.Where("content LIKE ?", "%"+query+"%")
	if documentType != "" {
		db = db.Where("document_type = ?", documentType)
	}
	var docs []model.Document
	if err := db.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("检索文档记录失败: %w", err)
	}
	return docs, nil
}

// CountByType 统计各文档类型的记录数。
func (r *documentRepository) CountByType() (map[string]int, error) {
	type row struct {
		DocumentType string
		Count        int
	}
	var rows []row
	err := r.db.Model(&model.Document{}).
		Select("document_type, COUNT(*) AS count").
		Group("document_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计文档数量失败: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.DocumentType] = r.Count
	}
	return counts, nil
}

// DeleteByID 删除文档记录。
func (r *documentRepository) DeleteByID(id string) error {
	if err := r.db.Delete(&model.Document{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("删除文档记录失败: %w", err)
	}
	return nil
}
