package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qu-assist-go/internal/model"
	"qu-assist-go/internal/pipeline"
	"qu-assist-go/pkg/tasks"
)

type fakeBlobStore struct{ err error }

func (f *fakeBlobStore) PutDocument(ctx context.Context, fileName string, content []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "documents/2026/08/29/" + fileName, nil
}

type fakeExtractor struct {
	pages []string
	err   error
}

func (f *fakeExtractor) ExtractPages(fileReader io.Reader, fileName string) ([]string, error) {
	return f.pages, f.err
}

type fakeDocumentRepo struct {
	saved     map[string]*model.Document
	saveErr   error
	counts    map[string]int
	countsErr error
	deleted   []string
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{saved: make(map[string]*model.Document)}
}

func (f *fakeDocumentRepo) Save(doc *model.Document) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[doc.ID] = doc
	return nil
}

func (f *fakeDocumentRepo) FindByID(id string) (*model.Document, error) {
	return f.saved[id], nil
}

func (f *fakeDocumentRepo) Search(query, documentType string) ([]model.Document, error) {
	return nil, nil
}

func (f *fakeDocumentRepo) CountByType() (map[string]int, error) {
	return f.counts, f.countsErr
}

func (f *fakeDocumentRepo) DeleteByID(id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.saved, id)
	return nil
}

type fakeIndexer struct {
	indexed     []string
	deleted     []string
	indexErr    error
	deleteErr   error
	indexCalled int
}

func (f *fakeIndexer) IndexChunks(ctx context.Context, doc *model.Document) error {
	f.indexCalled++
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed = append(f.indexed, doc.ID)
	return nil
}

func (f *fakeIndexer) DeleteByDocumentID(ctx context.Context, documentID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, documentID)
	return nil
}

type fakeBlobLister struct{ objects []model.StoredObject }

func (f *fakeBlobLister) ListDocuments(ctx context.Context) ([]model.StoredObject, error) {
	return f.objects, nil
}

func newTestDocumentService(repo *fakeDocumentRepo, indexer *fakeIndexer) DocumentService {
	processor := pipeline.NewProcessor(
		&fakeBlobStore{},
		&fakeExtractor{pages: []string{"Admission requirements for new students."}},
		1000, 200,
	)
	return NewDocumentService(processor, repo, indexer, &fakeBlobLister{})
}

func TestDocumentService(t *testing.T) {
	ctx := context.Background()
	content := []byte("%PDF fake content")

	t.Run("入库成功返回文档信息", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		indexer := &fakeIndexer{}
		svc := newTestDocumentService(repo, indexer)

		result := svc.ProcessAndStore(ctx, "guide.pdf", content)
		require.True(t, result.Success)
		assert.NotEmpty(t, result.DocumentID)
		assert.Equal(t, "guide.pdf", result.Title)
		assert.Equal(t, model.DocTypeAdmissions, result.DocumentType)
		assert.Greater(t, result.ChunksCreated, 0)

		// 权威记录与索引均已写入
		assert.Contains(t, repo.saved, result.DocumentID)
		assert.Contains(t, indexer.indexed, result.DocumentID)
		// 写入前先清理旧索引条目
		assert.Contains(t, indexer.deleted, result.DocumentID)
	})

	t.Run("处理失败返回结构化失败结果", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		processor := pipeline.NewProcessor(
			&fakeBlobStore{err: errors.New("minio down")},
			&fakeExtractor{pages: []string{"text"}},
			1000, 200,
		)
		svc := NewDocumentService(processor, repo, &fakeIndexer{}, &fakeBlobLister{})

		result := svc.ProcessAndStore(ctx, "guide.pdf", content)
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "Failed to process document")
		assert.Empty(t, repo.saved)
	})

	t.Run("索引失败时文档已入库且结果如实上报", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		indexer := &fakeIndexer{indexErr: errors.New("es down")}
		svc := newTestDocumentService(repo, indexer)

		result := svc.ProcessAndStore(ctx, "guide.pdf", content)
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.DocumentID)
		assert.Contains(t, result.Message, "indexing failed")
		// 权威记录保留，等待后续重建索引
		assert.Contains(t, repo.saved, result.DocumentID)
	})

	t.Run("统计按类型汇总", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		repo.counts = map[string]int{
			model.DocTypeAdmissions: 3,
			model.DocTypeGeneral:    2,
		}
		svc := newTestDocumentService(repo, &fakeIndexer{})

		stats, err := svc.Statistics()
		require.NoError(t, err)
		assert.Equal(t, 5, stats.TotalDocuments)
		assert.Equal(t, 3, stats.ByType[model.DocTypeAdmissions])
	})

	t.Run("删除同时清理权威记录与索引", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		indexer := &fakeIndexer{}
		svc := newTestDocumentService(repo, indexer)

		result := svc.ProcessAndStore(ctx, "guide.pdf", content)
		require.True(t, result.Success)

		require.NoError(t, svc.Delete(ctx, result.DocumentID))
		assert.Contains(t, repo.deleted, result.DocumentID)
		assert.NotContains(t, repo.saved, result.DocumentID)
	})

	t.Run("重建索引读取权威记录重写索引", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		indexer := &fakeIndexer{}
		svc := newTestDocumentService(repo, indexer)

		result := svc.ProcessAndStore(ctx, "guide.pdf", content)
		require.True(t, result.Success)
		indexer.indexed = nil

		err := svc.Reindex(ctx, tasks.ReindexTask{DocumentID: result.DocumentID})
		require.NoError(t, err)
		assert.Contains(t, indexer.indexed, result.DocumentID)
	})

	t.Run("重建索引的文档不存在时返回错误", func(t *testing.T) {
		svc := newTestDocumentService(newFakeDocumentRepo(), &fakeIndexer{})
		err := svc.Reindex(ctx, tasks.ReindexTask{DocumentID: "missing"})
		assert.Error(t, err)
	})
}
