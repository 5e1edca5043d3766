package ruleconf

import (
	"strings"
	"sync"
	"sync/atomic"
)

// ============================================================================
// 配置数据模型
// ============================================================================

// ValidationModelConfig 模型配置源反序列化后的完整内容
// 注意：不包含 RuleArgument，参数来自独立的配置源，由 Provider 按需绑定
type ValidationModelConfig struct {
	Models []*Model `json:"Models" yaml:"models" xml:"Models>Model"`
}

// RuleArgumentConfig 规则参数配置源反序列化后的完整内容
type RuleArgumentConfig struct {
	RuleDefinitions []RuleArgument `json:"RuleDefinitions" yaml:"ruleDefinitions" xml:"RuleDefinitions>Def"`
}

// Model 一个被验证的模型（对应应用中的一个数据类型）
//
// 生命周期：
//   - 从配置源构建一次，之后除 Rule.Arguments 的懒加载外视为不可变
//   - lookup 标记只会被设置一次，用于保证参数绑定幂等
type Model struct {
	// Name 模型名称，必填
	Name string `json:"Name" yaml:"name" xml:"name,attr"`
	// Alias 可选别名，表示只在特定上下文生效的一组规则
	Alias string `json:"Alias,omitempty" yaml:"alias,omitempty" xml:"alias,attr,omitempty"`
	// Properties 被验证的属性，保持配置中的顺序
	Properties []*Property `json:"Properties" yaml:"properties" xml:"Properties>Property"`

	populate       sync.Once
	lookupComplete atomic.Bool
}

// NewModel 创建模型
func NewModel(name, alias string, properties ...*Property) *Model {
	return &Model{
		Name:       name,
		Alias:      alias,
		Properties: properties,
	}
}

// LookupName 外部查找该模型使用的名称：有别名用别名，否则用名称
func (m *Model) LookupName() string {
	if strings.TrimSpace(m.Alias) == "" {
		return m.Name
	}
	return m.Alias
}

// FullName 名称，有别名时追加 ".alias"
func (m *Model) FullName() string {
	if strings.TrimSpace(m.Alias) == "" {
		return m.Name
	}
	return m.Name + "." + m.Alias
}

// LookupComplete 规则参数是否已经绑定完成
func (m *Model) LookupComplete() bool {
	return m.lookupComplete.Load()
}

// Property 模型上的一个被验证属性
type Property struct {
	// Name 属性名称，大小写敏感
	Name string `json:"Name" yaml:"name" xml:"name,attr"`
	// Rules 规则列表，可以为空（声明但不验证）
	Rules []*Rule `json:"Rules,omitempty" yaml:"rules,omitempty" xml:"Rules>Rule"`
}

// NewProperty 创建属性
func NewProperty(name string, rules ...*Rule) *Property {
	return &Property{Name: name, Rules: rules}
}

// Rule 属性上配置的一条规则
type Rule struct {
	// Type 规则类型
	Type RuleType `json:"Type" yaml:"type" xml:"type,attr"`
	// Name 可选名称，同一属性有两条同类型规则时用于区分
	Name string `json:"Name,omitempty" yaml:"name,omitempty" xml:"name,attr,omitempty"`
	// Arguments 规则参数，由 Provider 懒加载绑定，不参与序列化
	Arguments []RuleArgument `json:"-" yaml:"-" xml:"-"`
	// ErrorMessage 自定义错误消息，为空时使用默认消息
	ErrorMessage string `json:"Error,omitempty" yaml:"error,omitempty" xml:"Error,omitempty"`
	// TechnicalDescription 自定义技术描述
	TechnicalDescription string `json:"Technical,omitempty" yaml:"technical,omitempty" xml:"Technical,omitempty"`
	// FriendlyDescription 自定义友好描述
	FriendlyDescription string `json:"Friendly,omitempty" yaml:"friendly,omitempty" xml:"Friendly,omitempty"`
}

// NewRule 创建规则
func NewRule(typ RuleType, name string) *Rule {
	return &Rule{Type: typ, Name: name}
}

// WithMessages 设置自定义消息，返回自身便于链式构建
func (r *Rule) WithMessages(errorMessage, technical, friendly string) *Rule {
	r.ErrorMessage = errorMessage
	r.TechnicalDescription = technical
	r.FriendlyDescription = friendly
	return r
}

// RuleArgument 一条规则参数
// Rule 字段保存原始编码字符串，其余派生字段都从它解析
type RuleArgument struct {
	// Rule 原始编码字符串，如 "company.Name.max=50"
	Rule string `json:"Rule" yaml:"rule" xml:",chardata"`
	// Name 对应 Rule.Name，用于区分同类型规则
	Name string `json:"Name,omitempty" yaml:"name,omitempty" xml:"name,attr,omitempty"`
	// Type 对应 Rule.Type
	Type RuleType `json:"Type" yaml:"type" xml:"type,attr"`
}

// NewRuleArgument 创建规则参数
func NewRuleArgument(typ RuleType, name, raw string) RuleArgument {
	return RuleArgument{Rule: raw, Name: name, Type: typ}
}

// Parts 解析原始字符串
func (a RuleArgument) Parts() ArgumentParts {
	return ParseArgument(a.Rule)
}

// FullName 值分隔符之前的部分
func (a RuleArgument) FullName() string { return a.Parts().FullName }

// Model 模型段，对应 Model.LookupName
func (a RuleArgument) Model() string { return a.Parts().Model }

// Property 属性段
func (a RuleArgument) Property() string { return a.Parts().Property }

// Parameter 参数名段
func (a RuleArgument) Parameter() string { return a.Parts().Parameter }

// Value 参数值
func (a RuleArgument) Value() string { return a.Parts().Value }
