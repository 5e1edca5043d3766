package validation

import (
	"errors"
	"fmt"
	"strings"

	"katydid-common-validation/pkg/ruleconf"
)

var (
	// ErrRuleParse 规则配置无法编译（参数数量不符或参数值无法转换）
	ErrRuleParse = errors.New("rule parse error")

	// ErrPropertyNotFound 配置的属性在类型上不存在或不可访问
	ErrPropertyNotFound = errors.New("property not found")
)

// RuleParseError 编译单条规则失败
// 错误信息中包含规则类型、模型、属性，便于定位到具体配置
type RuleParseError struct {
	Type     ruleconf.RuleType
	Model    string
	Property string
	// RuleName 规则名称（可能为空）
	RuleName string
	// Expected/Actual 参数数量不符时有效，Expected < 0 表示不是数量问题
	Expected int
	Actual   int
	// Bound 转换失败的参数名（如 min、max）
	Bound string
	// Err 底层错误
	Err error
}

// Error 实现 error 接口
func (e *RuleParseError) Error() string {
	target := e.Model + "." + e.Property
	if e.RuleName != "" {
		target += " (" + e.RuleName + ")"
	}

	switch {
	case e.Expected >= 0:
		return fmt.Sprintf("error parsing configuration for %s rule on %s: expected arguments: %d, actual: %d",
			e.Type, target, e.Expected, e.Actual)
	case e.Bound != "":
		return fmt.Sprintf("error parsing %s value for %s rule on %s: %v", e.Bound, e.Type, target, e.Err)
	default:
		return fmt.Sprintf("error parsing configuration for %s rule on %s: %v", e.Type, target, e.Err)
	}
}

// Is 支持 errors.Is(err, ErrRuleParse)
func (e *RuleParseError) Is(target error) bool {
	return target == ErrRuleParse
}

// Unwrap 返回底层错误
func (e *RuleParseError) Unwrap() error {
	return e.Err
}

// newRuleParseError 补全上下文信息
// parse 阶段返回的 *RuleParseError 只带 Bound/Err，这里统一填充规则位置
func newRuleParseError(rule *ruleconf.Rule, model, property string, err error) *RuleParseError {
	var rpe *RuleParseError
	if !errors.As(err, &rpe) {
		rpe = &RuleParseError{Expected: -1, Err: err}
	}
	rpe.Type = rule.Type
	rpe.Model = model
	rpe.Property = property
	rpe.RuleName = rule.Name
	return rpe
}

// boundError parse 阶段某个参数值转换失败
func boundError(bound string, err error) error {
	return &RuleParseError{Expected: -1, Bound: bound, Err: err}
}

// BindError 属性无法绑定到类型上的字段或方法
type BindError struct {
	Model    string
	Property string
	TypeName string
}

// Error 实现 error 接口
func (e *BindError) Error() string {
	return fmt.Sprintf("cannot bind %s.%s: %s has no exported field or getter named %q",
		e.Model, e.Property, e.TypeName, e.Property)
}

// Is 支持 errors.Is(err, ErrPropertyNotFound)
func (e *BindError) Is(target error) bool {
	return target == ErrPropertyNotFound
}

// FieldFailure 验证器失败时的结构化载荷
type FieldFailure struct {
	// Namespace 显示名称，如 company.Name
	Namespace string `json:"namespace"`
	// Type 规则类型
	Type ruleconf.RuleType `json:"type"`
	// Tag 底层检查标签（如 required, email, min）
	Tag string `json:"tag"`
	// Param 标签参数
	Param string `json:"param,omitempty"`
	// Value 字段值
	Value any `json:"value,omitempty"`
	// Err 底层错误（不序列化）
	Err error `json:"-"`
}

// Error 实现 error 接口
func (f *FieldFailure) Error() string {
	if f.Param != "" {
		return fmt.Sprintf("field '%s' failed %s validation on tag '%s' with param '%s'", f.Namespace, f.Type, f.Tag, f.Param)
	}
	return fmt.Sprintf("field '%s' failed %s validation on tag '%s'", f.Namespace, f.Type, f.Tag)
}

// Unwrap 返回底层错误
func (f *FieldFailure) Unwrap() error {
	return f.Err
}

// ValidationErrorDetail 单个失败的验证
type ValidationErrorDetail struct {
	ModelName    string        `json:"modelName"`
	PropertyName string        `json:"propertyName"`
	Value        any           `json:"value,omitempty"`
	Message      string        `json:"message"`
	Failure      *FieldFailure `json:"failure,omitempty"`
}

// String 返回友好的错误信息
func (d ValidationErrorDetail) String() string {
	return fmt.Sprintf("%s.%s: %s", d.ModelName, d.PropertyName, d.Message)
}

// ValidationErrors 验证错误集合，实现 error 接口
type ValidationErrors []ValidationErrorDetail

// Error 实现 error 接口
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, d := range ve {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(d.String())
	}
	return b.String()
}

// Has 是否包含某个属性的错误
func (ve ValidationErrors) Has(property string) bool {
	for _, d := range ve {
		if d.PropertyName == property {
			return true
		}
	}
	return false
}

// Get 获取某个属性的所有错误消息
func (ve ValidationErrors) Get(property string) []string {
	var messages []string
	for _, d := range ve {
		if d.PropertyName == property {
			messages = append(messages, d.Message)
		}
	}
	return messages
}

// Properties 出错的属性名，按首次出现顺序去重
func (ve ValidationErrors) Properties() []string {
	seen := make(map[string]struct{}, len(ve))
	var out []string
	for _, d := range ve {
		if _, ok := seen[d.PropertyName]; ok {
			continue
		}
		seen[d.PropertyName] = struct{}{}
		out = append(out, d.PropertyName)
	}
	return out
}
