package pipeline

import (
	"regexp"
	"strings"

	"qu-assist-go/internal/model"
)

// typeRule 是一条 (关键词组, 类型标签) 分类规则。
type typeRule struct {
	label    string
	keywords []string
}

// 文档类型按固定优先级顺序判定：命中的第一组关键词决定类型，
// 后续组即使也命中亦不参与（first-match，而非 best-match）。
var typeRules = []typeRule{
	{model.DocTypeAdmissions, []string{"admission", "apply", "application", "requirements"}},
	{model.DocTypeAcademic, []string{"course", "curriculum", "syllabus", "academic"}},
	{model.DocTypePolicy, []string{"policy", "regulation", "rule", "procedure"}},
	{model.DocTypeService, []string{"service", "support", "help", "assistance"}},
}

// 常见的卡塔尔大学学院与部门参考列表。
var quDepartments = []string{
	"College of Engineering", "College of Business and Economics",
	"College of Arts and Sciences", "College of Medicine",
	"College of Education", "College of Law",
	"College of Pharmacy", "College of Dental Medicine",
	"College of Health Sciences", "College of Islamic Studies",
}

// 常见的校内服务参考列表。
var quServices = []string{
	"Student Affairs", "Academic Affairs", "Registrar",
	"Financial Aid", "Admissions", "Career Services",
	"Library Services", "IT Services", "International Affairs",
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@qu\.edu\.qa\b`)
	// 卡塔尔电话格式：+974 前缀或本地 8 位号码
	phonePattern = regexp.MustCompile(`\+974\s?\d{8}|\d{8}`)
)

// ExtractMetadata 对全文做大学领域的元数据抽取：文档类型分类、
// 学院/服务的引用识别以及联系方式扫描。
// 联系方式为邮箱和电话两次独立扫描的拼接，保留重复项。
func ExtractMetadata(text string) model.DocumentMeta {
	lower := strings.ToLower(text)

	meta := model.DocumentMeta{
		DocumentType: model.DocTypeGeneral,
		Departments:  []string{},
		Services:     []string{},
		ContactInfo:  []string{},
	}

	for _, rule := range typeRules {
		if containsAny(lower, rule.keywords) {
			meta.DocumentType = rule.label
			break
		}
	}

	for _, dept := range quDepartments {
		if strings.Contains(lower, strings.ToLower(dept)) {
			meta.Departments = append(meta.Departments, dept)
		}
	}

	for _, svc := range quServices {
		if strings.Contains(lower, strings.ToLower(svc)) {
			meta.Services = append(meta.Services, svc)
		}
	}

	meta.ContactInfo = append(meta.ContactInfo, emailPattern.FindAllString(text, -1)...)
	meta.ContactInfo = append(meta.ContactInfo, phonePattern.FindAllString(text, -1)...)

	return meta
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
