package validation

import (
	"errors"
	"strings"
	"sync"

	"katydid-common-validation/pkg/ruleconf"
)

// Compiler 把配置规则编译为可执行验证器
//
// 设计目标：
//   - 不需要参数且没有自定义消息的规则共享同一个验证器实例
//   - 带自定义消息的规则总是构造新实例，共享实例不会被修改
//   - 并发安全
type Compiler struct {
	engine *playgroundEngine
	enums  *EnumRegistry

	mu      sync.RWMutex
	customs map[string]CustomFunc

	// shared RuleType → *ruleValidator
	shared sync.Map
}

// CompilerOption 编译器选项
type CompilerOption func(*Compiler)

// WithEnums 使用指定的枚举注册表
func WithEnums(enums *EnumRegistry) CompilerOption {
	return func(c *Compiler) {
		if enums != nil {
			c.enums = enums
		}
	}
}

// WithCustomRule 注册自定义规则，名称与配置中 Custom 规则的 Name 对应
func WithCustomRule(name string, fn CustomFunc) CompilerOption {
	return func(c *Compiler) {
		c.RegisterCustom(name, fn)
	}
}

// NewCompiler 创建编译器
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		engine:  newPlaygroundEngine(),
		enums:   NewEnumRegistry(),
		customs: make(map[string]CustomFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enums 枚举注册表
func (c *Compiler) Enums() *EnumRegistry {
	return c.enums
}

// RegisterCustom 注册自定义规则
func (c *Compiler) RegisterCustom(name string, fn CustomFunc) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.customs[name] = fn
	c.mu.Unlock()
}

func (c *Compiler) custom(name string) (CustomFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.customs[name]
	return fn, ok
}

// Compile 编译单条规则
// model/property 仅用于错误信息
func (c *Compiler) Compile(rule *ruleconf.Rule, model, property string) (Validator, error) {
	if rule == nil {
		return nil, errors.New("nil rule")
	}

	spec, err := lookupSpec(rule, model, property)
	if err != nil {
		return nil, err
	}

	message := rule.ErrorMessage
	if strings.TrimSpace(message) == "" {
		message = ""
	}
	shareable := spec.args == 0 && message == ""
	if shareable {
		if v, ok := c.shared.Load(rule.Type); ok {
			return v.(*ruleValidator), nil
		}
	}

	_, vr, err := parseRule(rule, model, property)
	if err != nil {
		return nil, err
	}
	v, err := spec.build(c, vr)
	if err != nil {
		return nil, newRuleParseError(rule, model, property, err)
	}
	v.message = message

	if shareable {
		actual, _ := c.shared.LoadOrStore(rule.Type, v)
		return actual.(*ruleValidator), nil
	}
	return v, nil
}
