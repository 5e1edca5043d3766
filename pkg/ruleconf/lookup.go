package ruleconf

import "strings"

// ModelSource 模型配置源
// 实现方在构造时完成读取，之后只返回同一份配置
type ModelSource interface {
	ModelConfig() *ValidationModelConfig
}

// ArgumentSource 规则参数配置源
type ArgumentSource interface {
	ArgumentConfig() *RuleArgumentConfig
}

// StaticModels 内存中的模型配置源
type StaticModels struct {
	Config *ValidationModelConfig
}

// ModelConfig 实现 ModelSource
func (s StaticModels) ModelConfig() *ValidationModelConfig {
	if s.Config == nil {
		return &ValidationModelConfig{}
	}
	return s.Config
}

// StaticArguments 内存中的规则参数配置源
type StaticArguments struct {
	Config *RuleArgumentConfig
}

// ArgumentConfig 实现 ArgumentSource
func (s StaticArguments) ArgumentConfig() *RuleArgumentConfig {
	if s.Config == nil {
		return &RuleArgumentConfig{}
	}
	return s.Config
}

// ArgumentsForModel 筛选模型段匹配的参数（大小写不敏感）
func ArgumentsForModel(args []RuleArgument, model string) []RuleArgument {
	return filterArguments(args, func(p ArgumentParts, _ RuleArgument) bool {
		return strings.EqualFold(p.Model, model)
	})
}

// ArgumentsForProperty 筛选模型段、属性段都匹配的参数
func ArgumentsForProperty(args []RuleArgument, model, property string) []RuleArgument {
	return filterArguments(args, func(p ArgumentParts, _ RuleArgument) bool {
		return strings.EqualFold(p.Model, model) && strings.EqualFold(p.Property, property)
	})
}

// LookupArguments 筛选绑定到某条规则的参数
//   - model/property 大小写不敏感
//   - 规则类型必须一致
//   - 规则有名称时，参数名称必须一致（大小写敏感）
func LookupArguments(args []RuleArgument, model, property string, typ RuleType, ruleName string) []RuleArgument {
	return filterArguments(args, func(p ArgumentParts, a RuleArgument) bool {
		if a.Type != typ {
			return false
		}
		if ruleName != "" && a.Name != ruleName {
			return false
		}
		return strings.EqualFold(p.Model, model) && strings.EqualFold(p.Property, property)
	})
}

func filterArguments(args []RuleArgument, match func(ArgumentParts, RuleArgument) bool) []RuleArgument {
	out := make([]RuleArgument, 0)
	for _, a := range args {
		if match(a.Parts(), a) {
			out = append(out, a)
		}
	}
	return out
}
