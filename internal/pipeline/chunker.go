// Package pipeline 定义了文档处理的核心流程。
package pipeline

import (
	"strings"
	"unicode/utf8"

	"qu-assist-go/internal/model"
)

const (
	// DefaultChunkSize 与 DefaultChunkOverlap 是切块参数的兜底默认值。
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200

	// 句界回扫窗口的硬上限（字符数）。
	boundaryScanLimit = 200
)

// ChunkText 将长文本切分为带重叠的切块序列。
//
// 算法：从偏移 0 开始，暂定切点为 start+chunkSize；若切点落在文本内部，
// 则从切点向前回扫，在不越过 max(start+chunkSize/2, end-200) 的窗口内
// 寻找最近的句末符号（. ! ?），找到则紧贴其后切断，避免句中截断；
// 找不到则按 chunkSize 硬切。相邻切块重叠 overlap 个字符。
// 空白切块被丢弃，不产生空内容的 Chunk。偏移量以 rune 计。
func ChunkText(text string, chunkSize, overlap int) []model.Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap <= 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 5
		}
	}

	runes := []rune(text)
	n := len(runes)
	var chunks []model.Chunk
	start := 0
	chunkIndex := 0

	for start < n {
		end := start + chunkSize

		// 切点落在文本内部时尝试对齐句子边界
		if end < n {
			lo := start + chunkSize/2
			if end-boundaryScanLimit > lo {
				lo = end - boundaryScanLimit
			}
			for i := end; i > lo; i-- {
				if isSentenceEnd(runes[i]) {
					end = i + 1
					break
				}
			}
		}

		sliceEnd := end
		if sliceEnd > n {
			sliceEnd = n
		}

		content := strings.TrimSpace(string(runes[start:sliceEnd]))
		if content != "" {
			chunks = append(chunks, model.Chunk{
				Content:    content,
				ChunkIndex: chunkIndex,
				StartChar:  start,
				EndChar:    sliceEnd,
				ChunkSize:  utf8.RuneCountInString(content),
				WordCount:  len(strings.Fields(content)),
			})
			chunkIndex++
		}

		next := end - overlap
		if next <= start {
			// 参数组合导致无法前进时退化为硬切步进
			next = sliceEnd
		}
		start = next
	}

	return chunks
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
