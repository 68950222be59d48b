package harness

import (
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"
)

var discoveryLog = logrus.WithField("component", "discovery")

// strategySuffix 候选类型的命名约定：具体类型名必须以此后缀结尾
const strategySuffix = "Strategy"

// Candidate 一个待校验的策略候选
type Candidate struct {
	ID       string // 注册 ID
	TypeName string // 具体类型名（去掉指针）
	Instance any    // 新建实例，后续流程独占使用
}

// Discover 枚举注册表中的候选策略
// 命名不符合 "Strategy" 后缀约定的类型跳过并记录诊断，不视为致命错误；
// 对不变的注册表输入，结果确定且幂等（按 ID 排序）
func Discover(registry *Registry) []Candidate {
	candidates := make([]Candidate, 0)

	for _, id := range registry.IDs() {
		instance, err := registry.NewInstance(id)
		if err != nil {
			discoveryLog.Warnf("skip %s: %v", id, err)
			continue
		}

		name := concreteTypeName(instance)
		if !strings.HasSuffix(name, strategySuffix) {
			discoveryLog.Warnf("skip %s: type %s does not follow the %q suffix convention", id, name, strategySuffix)
			continue
		}

		candidates = append(candidates, Candidate{
			ID:       id,
			TypeName: name,
			Instance: instance,
		})
	}

	discoveryLog.Infof("discovered %d candidate strategies", len(candidates))
	return candidates
}

// concreteTypeName 返回实例的具体类型名（解引用指针）
func concreteTypeName(instance any) string {
	typ := reflect.TypeOf(instance)
	if typ == nil {
		return ""
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ.Name()
}
