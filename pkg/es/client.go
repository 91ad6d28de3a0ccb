// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"qu-assist-go/internal/config"
	"qu-assist-go/internal/model"
	"qu-assist-go/pkg/log"
)

// Client 封装了 Elasticsearch 客户端与切块索引。
type Client struct {
	es        *elasticsearch.Client
	indexName string
}

// NewClient 初始化 Elasticsearch 客户端，并在索引缺失时创建它。
func NewClient(cfg config.ElasticsearchConfig) (*Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.Addresses},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, err
	}
	c := &Client{es: client, indexName: cfg.IndexName}
	if err := c.createIndexIfNotExists(); err != nil {
		return nil, err
	}
	return c, nil
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func (c *Client) createIndexIfNotExists() error {
	res, err := c.es.Indices.Exists([]string{c.indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", c.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", c.indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	// 切块记录的映射：标题与正文可检索，文档级字段支持过滤/聚合
	mapping := `{
		"mappings": {
			"properties": {
				"id": { "type": "keyword" },
				"document_id": { "type": "keyword" },
				"title": { "type": "text" },
				"content": { "type": "text" },
				"document_type": { "type": "keyword" },
				"source_file": { "type": "keyword" },
				"created_at": { "type": "date" },
				"chunk_index": { "type": "integer" }
			}
		}
	}`

	res, err = c.es.Indices.Create(
		c.indexName,
		c.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", c.indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", c.indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", c.indexName)
	return nil
}

// IndexChunks 把文档的全部切块以反规范化记录写入索引。
// 记录 ID 为 {document_id}_chunk_{chunk_index}，重复写入覆盖旧记录。
func (c *Client) IndexChunks(ctx context.Context, doc *model.Document) error {
	for _, chunk := range doc.Chunks {
		esDoc := model.EsChunk{
			ID:           fmt.Sprintf("%s_chunk_%d", doc.ID, chunk.ChunkIndex),
			DocumentID:   doc.ID,
			Title:        doc.Title,
			Content:      chunk.Content,
			DocumentType: doc.DocumentType,
			SourceFile:   doc.SourceFile,
			CreatedAt:    doc.CreatedAt,
			ChunkIndex:   chunk.ChunkIndex,
		}

		docBytes, err := json.Marshal(esDoc)
		if err != nil {
			return err
		}

		req := esapi.IndexRequest{
			Index:      c.indexName,
			DocumentID: esDoc.ID,
			Body:       bytes.NewReader(docBytes),
			Refresh:    "true",
		}

		res, err := req.Do(ctx, c.es)
		if err != nil {
			return fmt.Errorf("索引切块 %d 失败: %w", chunk.ChunkIndex, err)
		}
		res.Body.Close()
		if res.IsError() {
			log.Errorf("索引切块到 Elasticsearch 出错: %s", res.String())
			return fmt.Errorf("索引切块 %d 时 Elasticsearch 返回错误", chunk.ChunkIndex)
		}
	}
	return nil
}

// Search 执行混合检索：对正文与标题做关键词匹配，并叠加短语加权，
// 可选地按文档类型做等值过滤。返回切块级命中列表。
func (c *Client) Search(ctx context.Context, query, documentType string, top int) ([]model.SearchHit, error) {
	boolQuery := map[string]interface{}{
		"must": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"content", "title"},
			},
		},
		// 额外的 should：对完整查询做 match_phrase 以提升精确短语的召回
		"should": []map[string]interface{}{
			{
				"match_phrase": map[string]interface{}{
					"content": map[string]interface{}{
						"query": query,
						"boost": 3.0,
					},
				},
			},
		},
	}
	if documentType != "" {
		boolQuery["filter"] = map[string]interface{}{
			"term": map[string]interface{}{"document_type": documentType},
		}
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"size":  top,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indexName),
		c.es.Search.WithBody(&buf),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("Elasticsearch 返回错误, status: %s", res.Status())
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.EsChunk `json:"_source"`
				Score  float64       `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	hits := make([]model.SearchHit, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		hits = append(hits, model.SearchHit{
			ID:           hit.Source.ID,
			DocumentID:   hit.Source.DocumentID,
			Title:        hit.Source.Title,
			Content:      hit.Source.Content,
			DocumentType: hit.Source.DocumentType,
			SourceFile:   hit.Source.SourceFile,
			ChunkIndex:   hit.Source.ChunkIndex,
			Score:        hit.Score,
		})
	}
	return hits, nil
}

// DeleteByDocumentID 删除指定文档的全部切块记录。
func (c *Client) DeleteByDocumentID(ctx context.Context, documentID string) error {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"document_id": documentID},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return fmt.Errorf("failed to encode delete query: %w", err)
	}

	res, err := c.es.DeleteByQuery([]string{c.indexName}, &buf,
		c.es.DeleteByQuery.WithContext(ctx),
		c.es.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("删除文档 '%s' 的切块失败: %w", documentID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("删除文档切块时 Elasticsearch 返回错误: %s", res.String())
	}
	return nil
}
