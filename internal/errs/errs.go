// Package errs 定义了核心流水线的错误分类。
// 所有对外操作在边界处捕获这些错误并转换为结构化结果，
// 不允许未分类的裸错误穿出核心。
package errs

import (
	"errors"
	"fmt"
)

// Kind 是错误类别的枚举。
type Kind string

const (
	// KindUpload blob 写入失败，入库整体失败，不产生半成品 Document。
	KindUpload Kind = "upload_error"
	// KindExtraction 字节流无法解析为文档，该文档入库失败。
	KindExtraction Kind = "extraction_error"
	// KindIndexing 搜索引擎写入/查询失败，文档已入库但不可检索。
	KindIndexing Kind = "indexing_error"
	// KindGeneration 生成调用失败，本次回答整体失败，不写缓存。
	KindGeneration Kind = "generation_error"
	// KindPersistence 会话写入失败，降级为独立单轮记录，不影响回答。
	KindPersistence Kind = "persistence_error"
)

// Error 携带类别的包装错误。
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap 将底层错误标记为指定类别。
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Wrapf 以格式化消息包装底层错误并标记类别。
func Wrapf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// IsKind 判断错误链上是否存在指定类别的错误。
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
