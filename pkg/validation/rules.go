package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"katydid-common-validation/pkg/ruleconf"
)

// ============================================================================
// 描述性规则（用于展示，不执行验证）
// ============================================================================

// ValidationRule 描述性规则
type ValidationRule interface {
	Base() *RuleBase
}

// RuleBase 所有描述性规则的公共字段
type RuleBase struct {
	Model                string            `json:"model" yaml:"model"`
	Property             string            `json:"property" yaml:"property"`
	Type                 ruleconf.RuleType `json:"type" yaml:"type"`
	TechnicalDescription string            `json:"technicalDescription" yaml:"technicalDescription"`
	FriendlyDescription  string            `json:"friendlyDescription" yaml:"friendlyDescription"`
}

// Base 实现 ValidationRule 接口
func (b *RuleBase) Base() *RuleBase { return b }

// RequiredRule 必填
type RequiredRule struct{ RuleBase }

// EmailAddressRule 邮箱
type EmailAddressRule struct{ RuleBase }

// UrlRule URL
type UrlRule struct{ RuleBase }

// CreditCardRule 信用卡号
type CreditCardRule struct{ RuleBase }

// PhoneRule 电话号码
type PhoneRule struct{ RuleBase }

// MinLengthRule 最小长度
type MinLengthRule struct {
	RuleBase
	Min int `json:"min" yaml:"min"`
}

// MaxLengthRule 最大长度
type MaxLengthRule struct {
	RuleBase
	Max int `json:"max" yaml:"max"`
}

// StringLengthRule 字符串长度区间
type StringLengthRule struct {
	RuleBase
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// RangeRule 数值区间，日期以 ticks 表示
type RangeRule struct {
	RuleBase
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// RegexRule 正则表达式（整串匹配）
type RegexRule struct {
	RuleBase
	Pattern string `json:"pattern" yaml:"pattern"`
}

// FileExtensionsRule 文件扩展名
type FileExtensionsRule struct {
	RuleBase
	Extensions string `json:"extensions" yaml:"extensions"`
}

// EnumDataTypeRule 枚举
type EnumDataTypeRule struct {
	RuleBase
	EnumName string `json:"enumName" yaml:"enumName"`
}

// CustomRule 自定义规则，参数格式为 "<param> : <value>"
type CustomRule struct {
	RuleBase
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Parameters []string `json:"parameters" yaml:"parameters"`
}

// ============================================================================
// 规则类型表
// ============================================================================

// anyArgs 参数数量不限
const anyArgs = -1

// ruleSpec 每种规则类型的参数要求、解析、默认描述和验证器构造
type ruleSpec struct {
	args      int
	parse     func(rule *ruleconf.Rule) (ValidationRule, error)
	technical func(ValidationRule) string
	friendly  func(ValidationRule) string
	build     func(c *Compiler, rule ValidationRule) (*ruleValidator, error)
}

func fixed(s string) func(ValidationRule) string {
	return func(ValidationRule) string { return s }
}

var ruleSpecs = map[ruleconf.RuleType]*ruleSpec{
	ruleconf.RuleRequired: {
		parse:     func(*ruleconf.Rule) (ValidationRule, error) { return &RequiredRule{}, nil },
		technical: fixed("must have a non-null value."),
		friendly:  fixed("Is Required"),
		build:     buildRequired,
	},
	ruleconf.RuleEmailAddress: {
		parse:     func(*ruleconf.Rule) (ValidationRule, error) { return &EmailAddressRule{}, nil },
		technical: fixed("must be a string containing a correctly formatted Email Address."),
		friendly:  fixed("Valid Email Address"),
		build:     buildFormat(ruleconf.RuleEmailAddress, "email"),
	},
	ruleconf.RuleUrl: {
		parse:     func(*ruleconf.Rule) (ValidationRule, error) { return &UrlRule{}, nil },
		technical: fixed("must be a string containing a correctly formatted URL."),
		friendly:  fixed("Valid URL"),
		build:     buildFormat(ruleconf.RuleUrl, "url"),
	},
	ruleconf.RuleCreditCard: {
		parse:     func(*ruleconf.Rule) (ValidationRule, error) { return &CreditCardRule{}, nil },
		technical: fixed("must be a string containing a correctly formatted Credit Card Number."),
		friendly:  fixed("Valid Credit Card Number"),
		build:     buildFormat(ruleconf.RuleCreditCard, "credit_card"),
	},
	ruleconf.RulePhone: {
		parse:     func(*ruleconf.Rule) (ValidationRule, error) { return &PhoneRule{}, nil },
		technical: fixed("must be a string containing a valid Phone Number."),
		friendly:  fixed("Valid Telephone Number"),
		build:     buildFormat(ruleconf.RulePhone, tagPhone),
	},
	ruleconf.RuleMinLength: {
		args: 1,
		parse: func(rule *ruleconf.Rule) (ValidationRule, error) {
			n, err := parseInt(rule.Arguments[0].Value())
			if err != nil {
				return nil, boundError("minimum", err)
			}
			return &MinLengthRule{Min: n}, nil
		},
		technical: func(r ValidationRule) string {
			return fmt.Sprintf("must have a length of %d or greater.", r.(*MinLengthRule).Min)
		},
		friendly: func(r ValidationRule) string {
			return fmt.Sprintf("Minimum Length: %d", r.(*MinLengthRule).Min)
		},
		build: buildMinLength,
	},
	ruleconf.RuleMaxLength: {
		args: 1,
		parse: func(rule *ruleconf.Rule) (ValidationRule, error) {
			n, err := parseInt(rule.Arguments[0].Value())
			if err != nil {
				return nil, boundError("maximum", err)
			}
			return &MaxLengthRule{Max: n}, nil
		},
		technical: func(r ValidationRule) string {
			return fmt.Sprintf("must have a length no greater than %d.", r.(*MaxLengthRule).Max)
		},
		friendly: func(r ValidationRule) string {
			return fmt.Sprintf("Maximum Length: %d", r.(*MaxLengthRule).Max)
		},
		build: buildMaxLength,
	},
	ruleconf.RuleStringLength: {
		args: 2,
		parse: func(rule *ruleconf.Rule) (ValidationRule, error) {
			lo, err := namedInt(rule.Arguments, "minlength")
			if err != nil {
				return nil, boundError("minimum", err)
			}
			hi, err := namedInt(rule.Arguments, "maxlength")
			if err != nil {
				return nil, boundError("maximum", err)
			}
			return &StringLengthRule{Min: lo, Max: hi}, nil
		},
		technical: func(r ValidationRule) string {
			sl := r.(*StringLengthRule)
			return fmt.Sprintf("must be a string between %d and %d characters long.", sl.Min, sl.Max)
		},
		friendly: func(r ValidationRule) string {
			sl := r.(*StringLengthRule)
			return fmt.Sprintf("Between %d and %d characters.", sl.Min, sl.Max)
		},
		build: buildStringLength,
	},
	ruleconf.RuleRange: {
		args: 2,
		parse: func(rule *ruleconf.Rule) (ValidationRule, error) {
			lo, err := namedRangeBound(rule.Arguments, "min")
			if err != nil {
				return nil, boundError("minimum", err)
			}
			hi, err := namedRangeBound(rule.Arguments, "max")
			if err != nil {
				return nil, boundError("maximum", err)
			}
			return &RangeRule{Min: lo, Max: hi}, nil
		},
		technical: func(r ValidationRule) string {
			rr := r.(*RangeRule)
			return fmt.Sprintf("must have a value between %s and %s.", formatFloat(rr.Min), formatFloat(rr.Max))
		},
		friendly: func(r ValidationRule) string {
			rr := r.(*RangeRule)
			return fmt.Sprintf("Acceptable Range: %s - %s", formatFloat(rr.Min), formatFloat(rr.Max))
		},
		build: buildRange,
	},
	ruleconf.RuleRegex: {
		args: 1,
		parse: func(rule *ruleconf.Rule) (ValidationRule, error) {
			return &RegexRule{Pattern: rule.Arguments[0].Value()}, nil
		},
		technical: func(r ValidationRule) string {
			return fmt.Sprintf("must be a string matching the Regular Expression /%s/", r.(*RegexRule).Pattern)
		},
		friendly: fixed(""),
		build:    buildRegex,
	},
	ruleconf.RuleFileExtensions: {
		args: 1,
		parse: func(rule *ruleconf.Rule) (ValidationRule, error) {
			return &FileExtensionsRule{Extensions: rule.Arguments[0].Value()}, nil
		},
		technical: func(r ValidationRule) string {
			return fmt.Sprintf("must be a string containing one of the following valid File Extensions: %s.", r.(*FileExtensionsRule).Extensions)
		},
		friendly: func(r ValidationRule) string {
			return fmt.Sprintf("Accepted File Extensions: %s", r.(*FileExtensionsRule).Extensions)
		},
		build: buildFileExtensions,
	},
	ruleconf.RuleEnumDataType: {
		args: 1,
		parse: func(rule *ruleconf.Rule) (ValidationRule, error) {
			return &EnumDataTypeRule{EnumName: strings.TrimSpace(rule.Arguments[0].Value())}, nil
		},
		technical: func(r ValidationRule) string {
			return fmt.Sprintf("must contain a valid value from the Enum Type %s.", r.(*EnumDataTypeRule).EnumName)
		},
		friendly: fixed(""),
		build:    buildEnum,
	},
	ruleconf.RuleCustom: {
		args: anyArgs,
		parse: func(rule *ruleconf.Rule) (ValidationRule, error) {
			params := make([]string, 0, len(rule.Arguments))
			for _, arg := range rule.Arguments {
				params = append(params, fmt.Sprintf("%s : %s", arg.Parameter(), arg.Value()))
			}
			return &CustomRule{Name: rule.Name, Parameters: params}, nil
		},
		technical: fixed(""),
		friendly:  fixed(""),
		build:     buildCustom,
	},
}

// lookupSpec 查找规则类型并检查参数数量
// 不需要参数的类型忽略多余参数
func lookupSpec(rule *ruleconf.Rule, model, property string) (*ruleSpec, error) {
	spec, ok := ruleSpecs[rule.Type]
	if !ok {
		return nil, newRuleParseError(rule, model, property, fmt.Errorf("unsupported rule type %d", int(rule.Type)))
	}
	if spec.args > 0 && len(rule.Arguments) != spec.args {
		return nil, &RuleParseError{
			Type:     rule.Type,
			Model:    model,
			Property: property,
			RuleName: rule.Name,
			Expected: spec.args,
			Actual:   len(rule.Arguments),
		}
	}
	return spec, nil
}

// parseRule 解析为描述性规则（只填充类型化字段）
func parseRule(rule *ruleconf.Rule, model, property string) (*ruleSpec, ValidationRule, error) {
	spec, err := lookupSpec(rule, model, property)
	if err != nil {
		return nil, nil, err
	}
	vr, err := spec.parse(rule)
	if err != nil {
		return nil, nil, newRuleParseError(rule, model, property, err)
	}
	base := vr.Base()
	base.Model = model
	base.Property = property
	base.Type = rule.Type
	return spec, vr, nil
}

// Describe 把配置规则转换为描述性规则
// 技术描述为 "模型.属性 " + 描述，配置中的描述非空时覆盖默认描述
func Describe(rule *ruleconf.Rule, model, property string) (ValidationRule, error) {
	if rule == nil {
		return nil, errors.New("nil rule")
	}
	spec, vr, err := parseRule(rule, model, property)
	if err != nil {
		return nil, err
	}

	technical := spec.technical(vr)
	if strings.TrimSpace(rule.TechnicalDescription) != "" {
		technical = rule.TechnicalDescription
	}
	friendly := spec.friendly(vr)
	if strings.TrimSpace(rule.FriendlyDescription) != "" {
		friendly = rule.FriendlyDescription
	}

	base := vr.Base()
	base.TechnicalDescription = strings.TrimSpace(model + "." + property + " " + technical)
	base.FriendlyDescription = friendly
	return vr, nil
}

// DescribeModel 描述模型的所有规则，遇到错误时返回所有错误的合并
func DescribeModel(m *ruleconf.Model) ([]ValidationRule, error) {
	out := make([]ValidationRule, 0)
	if m == nil {
		return out, nil
	}

	var errs []error
	for _, prop := range m.Properties {
		if prop == nil {
			continue
		}
		for _, rule := range prop.Rules {
			if rule == nil {
				continue
			}
			vr, err := Describe(rule, m.Name, prop.Name)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, vr)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// ============================================================================
// 参数转换
// ============================================================================

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// singleNamed 按参数名（大小写不敏感）取唯一参数
func singleNamed(args []ruleconf.RuleArgument, parameter string) (string, error) {
	var (
		value string
		found int
	)
	for _, arg := range args {
		if strings.EqualFold(arg.Parameter(), parameter) {
			value = arg.Value()
			found++
		}
	}
	switch found {
	case 0:
		return "", fmt.Errorf("no argument named %q", parameter)
	case 1:
		return value, nil
	default:
		return "", fmt.Errorf("%d arguments named %q", found, parameter)
	}
}

func namedInt(args []ruleconf.RuleArgument, parameter string) (int, error) {
	s, err := singleNamed(args, parameter)
	if err != nil {
		return 0, err
	}
	return parseInt(s)
}

func namedRangeBound(args []ruleconf.RuleArgument, parameter string) (float64, error) {
	s, err := singleNamed(args, parameter)
	if err != nil {
		return 0, err
	}
	return parseRangeBound(s)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
