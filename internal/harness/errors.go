package harness

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category 校验/基准检查类别
type Category string

const (
	CategoryInterface   Category = "interface"
	CategoryMetadata    Category = "metadata"
	CategorySafety      Category = "safety"
	CategoryDeterminism Category = "determinism"
	CategoryPerformance Category = "performance"
	CategoryRuntime     Category = "runtime"
)

// Categories 校验类别的固定顺序（前一类失败则短路后续类别）
var Categories = []Category{
	CategoryInterface,
	CategoryMetadata,
	CategorySafety,
	CategoryDeterminism,
}

// IssueKind 诊断类型
type IssueKind string

const (
	InterfaceError      IssueKind = "InterfaceError"
	MetadataError       IssueKind = "MetadataError"
	SafetyViolation     IssueKind = "SafetyViolation"
	NonDeterminismError IssueKind = "NonDeterminismError"
	PerformanceWarning  IssueKind = "PerformanceWarning" // 非致命
	RuntimeFailure      IssueKind = "RuntimeFailure"     // 包含超时与未处理故障
)

// Issue 一条诊断信息
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

// NewIssue 构造诊断
func NewIssue(kind IssueKind, format string, args ...any) Issue {
	return Issue{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IssueError 把诊断当作 error 在内部传递
type IssueError struct {
	Issue
}

func (e IssueError) Error() string { return e.Issue.String() }

// NewIssueError 构造携带诊断类型的错误
func NewIssueError(kind IssueKind, format string, args ...any) error {
	return IssueError{Issue: NewIssue(kind, format, args...)}
}

// errRecovered 把策略内部的 panic 转换为普通错误，故障不向外传播
func errRecovered(op string, r any) error {
	if err, ok := r.(error); ok {
		return errors.Wrapf(err, "strategy %s panicked", op)
	}
	return errors.Errorf("strategy %s panicked: %v", op, r)
}
