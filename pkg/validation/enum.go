package validation

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Enum 已注册的枚举类型
type Enum struct {
	name    string
	members map[string]int64
}

// Name 枚举名称
func (e *Enum) Name() string { return e.name }

// Names 成员名称，按值排序
func (e *Enum) Names() []string {
	names := make([]string, 0, len(e.members))
	for n := range e.members {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if e.members[names[i]] == e.members[names[j]] {
			return names[i] < names[j]
		}
		return e.members[names[i]] < e.members[names[j]]
	})
	return names
}

// HasName 是否包含成员名称（大小写敏感）
func (e *Enum) HasName(name string) bool {
	_, ok := e.members[name]
	return ok
}

// HasValue 是否包含成员值
func (e *Enum) HasValue(v int64) bool {
	for _, n := range e.members {
		if n == v {
			return true
		}
	}
	return false
}

// valueStrings 去重后的成员值
func (e *Enum) valueStrings() []string {
	seen := make(map[int64]struct{}, len(e.members))
	out := make([]string, 0, len(e.members))
	for _, n := range e.Names() {
		v := e.members[n]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, strconv.FormatInt(v, 10))
	}
	return out
}

// EnumRegistry 按名称（大小写不敏感）注册枚举类型，供 EnumDataType 规则引用
type EnumRegistry struct {
	mu    sync.RWMutex
	enums map[string]*Enum
}

// NewEnumRegistry 创建枚举注册表
func NewEnumRegistry() *EnumRegistry {
	return &EnumRegistry{enums: make(map[string]*Enum)}
}

// Register 注册枚举，同名覆盖，空成员名称被忽略
func (r *EnumRegistry) Register(name string, members map[string]int64) {
	e := &Enum{name: name, members: make(map[string]int64, len(members))}
	for n, v := range members {
		if n == "" {
			continue
		}
		e.members[n] = v
	}

	r.mu.Lock()
	r.enums[strings.ToLower(name)] = e
	r.mu.Unlock()
}

// Lookup 查找枚举
func (r *EnumRegistry) Lookup(name string) (*Enum, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// RegisterEnum 注册强类型枚举
func RegisterEnum[E ~int | ~int8 | ~int16 | ~int32 | ~int64](r *EnumRegistry, name string, members map[string]E) {
	converted := make(map[string]int64, len(members))
	for n, v := range members {
		converted[n] = int64(v)
	}
	r.Register(name, converted)
}
