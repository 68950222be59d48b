package harness

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry 策略注册表
// 策略在各自包的 init() 中注册原型，注册表进程级唯一但可重建：
// 对不变的注册内容重复做 Discovery 必须得到完全相同的候选集合
type Registry struct {
	prototypes map[string]any
	mu         sync.RWMutex
}

// NewRegistry 创建新的策略注册表
func NewRegistry() *Registry {
	return &Registry{
		prototypes: make(map[string]any),
	}
}

// Register 注册策略原型（重复注册视为编程错误，直接 panic）
// 原型以 any 保存：是否满足契约由 Discovery/Validator 做结构化检查，
// 不合规的类型在发现阶段被跳过并记录诊断，而不是在注册时崩溃
func (r *Registry) Register(id string, prototype any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.prototypes[id]; exists {
		panic(fmt.Errorf("strategy %s already registered", id))
	}
	r.prototypes[id] = prototype
}

// IDs 按字典序返回所有已注册的策略 ID（确定性枚举）
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.prototypes))
	for id := range r.prototypes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get 获取已注册的原型
func (r *Registry) Get(id string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prototype, exists := r.prototypes[id]
	if !exists {
		return nil, fmt.Errorf("strategy %s not found", id)
	}
	return prototype, nil
}

// NewInstance 通过反射从原型创建全新实例
// 每个策略实例由单一 worker 独占，互相之间没有共享可变状态
func (r *Registry) NewInstance(id string) (any, error) {
	prototype, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	typ := reflect.TypeOf(prototype)
	if typ == nil {
		return nil, fmt.Errorf("strategy %s has nil prototype", id)
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return reflect.New(typ).Interface(), nil
}

// GlobalRegistry 全局策略注册表
// 策略包在 init() 中调用 RegisterStrategy，internal/strategies/all 统一触发导入
var GlobalRegistry = NewRegistry()

// RegisterStrategy 向全局注册表注册策略
func RegisterStrategy(id string, prototype any) {
	GlobalRegistry.Register(id, prototype)
}
