package service

import "qu-assist-go/internal/model"

// 面向全部文档的通用推荐问题列表。
var generalSuggestions = []string{
	"What are the admission requirements for Qatar University?",
	"How can I apply for financial aid?",
	"What academic programs are available?",
	"How do I register for courses?",
	"What are the university policies on academic integrity?",
	"How can I access library resources?",
	"What student services are available?",
	"How do I contact academic advisors?",
	"What are the graduation requirements?",
	"How can I get help with my studies?",
}

// 按文档类型定制的推荐问题列表。
var typedSuggestions = map[string][]string{
	model.DocTypeAdmissions: {
		"What are the admission requirements?",
		"How do I apply for admission?",
		"What documents do I need to submit?",
		"When are the application deadlines?",
		"How much does it cost to apply?",
	},
	model.DocTypeAcademic: {
		"What courses are required for my program?",
		"How do I register for classes?",
		"What are the graduation requirements?",
		"How can I change my major?",
		"What is the academic calendar?",
	},
	model.DocTypeService: {
		"What student services are available?",
		"How can I get academic support?",
		"Where can I find career guidance?",
		"How do I access IT services?",
		"What health services are available?",
	},
}

// Suggestions 返回指定文档类型的静态推荐问题；
// 未指定或无定制列表时返回通用列表的前五条。
func Suggestions(documentType string) []string {
	if list, ok := typedSuggestions[documentType]; ok {
		return list
	}
	return generalSuggestions[:5]
}
