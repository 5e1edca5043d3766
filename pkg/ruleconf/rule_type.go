package ruleconf

import (
	"fmt"
	"strings"
)

// RuleType 规则类型，封闭枚举
// 配置文件中以名称出现（大小写不敏感），序列化时输出规范名称
type RuleType int

const (
	RuleUnknown RuleType = iota
	RuleRequired
	RuleMinLength
	RuleMaxLength
	RuleStringLength
	RuleRange
	RuleRegex
	RuleEmailAddress
	RuleUrl
	RuleCreditCard
	RulePhone
	RuleFileExtensions
	RuleEnumDataType
	RuleCustom
)

var ruleTypeNames = [...]string{
	RuleUnknown:        "Unknown",
	RuleRequired:       "Required",
	RuleMinLength:      "MinLength",
	RuleMaxLength:      "MaxLength",
	RuleStringLength:   "StringLength",
	RuleRange:          "Range",
	RuleRegex:          "Regex",
	RuleEmailAddress:   "EmailAddress",
	RuleUrl:            "Url",
	RuleCreditCard:     "CreditCard",
	RulePhone:          "Phone",
	RuleFileExtensions: "FileExtensions",
	RuleEnumDataType:   "EnumDataType",
	RuleCustom:         "Custom",
}

// RuleTypes 返回所有有效的规则类型（不含 RuleUnknown）
func RuleTypes() []RuleType {
	types := make([]RuleType, 0, len(ruleTypeNames)-1)
	for t := RuleRequired; t <= RuleCustom; t++ {
		types = append(types, t)
	}
	return types
}

// String 实现 fmt.Stringer
func (t RuleType) String() string {
	if t < 0 || int(t) >= len(ruleTypeNames) {
		return fmt.Sprintf("RuleType(%d)", int(t))
	}
	return ruleTypeNames[t]
}

// Valid 是否为已知规则类型
func (t RuleType) Valid() bool {
	return t > RuleUnknown && t <= RuleCustom
}

// ParseRuleType 按名称解析规则类型，大小写不敏感
// 兼容旧配置里的数字写法（"1" 即 Required）
func ParseRuleType(s string) (RuleType, error) {
	s = strings.TrimSpace(s)
	for t := RuleRequired; t <= RuleCustom; t++ {
		if strings.EqualFold(ruleTypeNames[t], s) {
			return t, nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && RuleType(n).Valid() && fmt.Sprint(n) == s {
		return RuleType(n), nil
	}
	return RuleUnknown, fmt.Errorf("unknown rule type %q", s)
}

// MarshalText 实现 encoding.TextMarshaler，JSON/YAML/XML 共用
func (t RuleType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid rule type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (t *RuleType) UnmarshalText(text []byte) error {
	parsed, err := ParseRuleType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
