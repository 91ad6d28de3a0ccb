package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"qu-assist-go/internal/model"
)

func TestExtractMetadata(t *testing.T) {
	t.Run("招生类关键词分类", func(t *testing.T) {
		meta := ExtractMetadata("Undergraduate admission requirements for Fall 2026.")
		assert.Equal(t, model.DocTypeAdmissions, meta.DocumentType)
	})

	t.Run("分类大小写不敏感", func(t *testing.T) {
		meta := ExtractMetadata("ADMISSION REQUIREMENTS")
		assert.Equal(t, model.DocTypeAdmissions, meta.DocumentType)
	})

	t.Run("多组关键词同时命中时取优先级最高的一组", func(t *testing.T) {
		// 同时包含 academic 与 policy 关键词，academic 优先
		meta := ExtractMetadata("Academic integrity policy and procedures.")
		assert.Equal(t, model.DocTypeAcademic, meta.DocumentType)

		// admission 关键词优先于其余所有组
		meta = ExtractMetadata("Policy on course admission and student services.")
		assert.Equal(t, model.DocTypeAdmissions, meta.DocumentType)
	})

	t.Run("无关键词命中时归为通用类型", func(t *testing.T) {
		meta := ExtractMetadata("Campus map and parking information.")
		assert.Equal(t, model.DocTypeGeneral, meta.DocumentType)
	})

	t.Run("识别学院与服务引用", func(t *testing.T) {
		meta := ExtractMetadata(
			"Contact the College of Engineering or the college of law. " +
				"The Registrar and Financial Aid offices are in building A.")
		assert.ElementsMatch(t, []string{"College of Engineering", "College of Law"}, meta.Departments)
		assert.ElementsMatch(t, []string{"Registrar", "Financial Aid"}, meta.Services)
	})

	t.Run("抽取邮箱与电话", func(t *testing.T) {
		meta := ExtractMetadata("Email admissions@qu.edu.qa or call +974 44034444.")
		assert.Contains(t, meta.ContactInfo, "admissions@qu.edu.qa")
		assert.Contains(t, meta.ContactInfo, "+974 44034444")
	})

	t.Run("非校内域名邮箱不抽取", func(t *testing.T) {
		meta := ExtractMetadata("Email someone@gmail.com for details.")
		assert.Empty(t, meta.ContactInfo)
	})

	t.Run("空文本返回零值元数据", func(t *testing.T) {
		meta := ExtractMetadata("")
		assert.Equal(t, model.DocTypeGeneral, meta.DocumentType)
		assert.Empty(t, meta.Departments)
		assert.Empty(t, meta.Services)
		assert.Empty(t, meta.ContactInfo)
	})
}
