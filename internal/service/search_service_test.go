package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qu-assist-go/internal/model"
)

type fakeSearcher struct {
	hits      []model.SearchHit
	err       error
	lastQuery string
	lastType  string
}

func (f *fakeSearcher) Search(ctx context.Context, query, documentType string, top int) ([]model.SearchHit, error) {
	f.lastQuery = query
	f.lastType = documentType
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func hit(docID, title string, chunkIndex int, score float64) model.SearchHit {
	return model.SearchHit{
		ID:           docID + "_chunk_0",
		DocumentID:   docID,
		Title:        title,
		Content:      "chunk content of " + docID,
		DocumentType: model.DocTypeGeneral,
		ChunkIndex:   chunkIndex,
		Score:        score,
	}
}

func TestSearchServiceRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("同一文档的多条命中聚合为一条结果", func(t *testing.T) {
		searcher := &fakeSearcher{hits: []model.SearchHit{
			hit("doc1", "Admission Guide", 0, 2.0),
			hit("doc1", "Admission Guide", 3, 5.5),
			hit("doc2", "Course Catalog", 1, 3.0),
		}}
		svc := NewSearchService(searcher, 5)

		results, err := svc.Retrieve(ctx, "admission", "")
		require.NoError(t, err)
		require.Len(t, results, 2)

		// doc1 的 max_score 更高，排在前面
		assert.Equal(t, "doc1", results[0].DocumentID)
		assert.Equal(t, 5.5, results[0].MaxScore)
		assert.Len(t, results[0].Chunks, 2)
		assert.Equal(t, "doc2", results[1].DocumentID)
		assert.Equal(t, 3.0, results[1].MaxScore)
	})

	t.Run("得分相同时保持首次出现顺序", func(t *testing.T) {
		searcher := &fakeSearcher{hits: []model.SearchHit{
			hit("docA", "A", 0, 2.0),
			hit("docB", "B", 0, 2.0),
			hit("docC", "C", 0, 2.0),
		}}
		svc := NewSearchService(searcher, 5)

		results, err := svc.Retrieve(ctx, "q", "")
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "docA", results[0].DocumentID)
		assert.Equal(t, "docB", results[1].DocumentID)
		assert.Equal(t, "docC", results[2].DocumentID)
	})

	t.Run("结果数截断到上限", func(t *testing.T) {
		searcher := &fakeSearcher{hits: []model.SearchHit{
			hit("d1", "1", 0, 5),
			hit("d2", "2", 0, 4),
			hit("d3", "3", 0, 3),
		}}
		svc := NewSearchService(searcher, 2)

		results, err := svc.Retrieve(ctx, "q", "")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "d1", results[0].DocumentID)
	})

	t.Run("查询增强附加院校前缀与类型提示", func(t *testing.T) {
		searcher := &fakeSearcher{}
		svc := NewSearchService(searcher, 5)

		_, err := svc.Retrieve(ctx, "tuition fees", "admissions")
		require.NoError(t, err)
		assert.Equal(t, "Qatar University tuition fees admissions document", searcher.lastQuery)
		assert.Equal(t, "admissions", searcher.lastType)

		_, err = svc.Retrieve(ctx, "tuition fees", "")
		require.NoError(t, err)
		assert.Equal(t, "Qatar University tuition fees", searcher.lastQuery)
	})

	t.Run("搜索引擎失败时透传错误", func(t *testing.T) {
		searcher := &fakeSearcher{err: errors.New("es down")}
		svc := NewSearchService(searcher, 5)

		results, err := svc.Retrieve(ctx, "q", "")
		assert.Error(t, err)
		assert.Nil(t, results)
	})

	t.Run("无命中返回空结果而非错误", func(t *testing.T) {
		svc := NewSearchService(&fakeSearcher{}, 5)
		results, err := svc.Retrieve(ctx, "nothing", "")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
