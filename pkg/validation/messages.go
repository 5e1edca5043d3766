package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"

	"katydid-common-validation/pkg/ruleconf"
)

// 默认消息模板：{0} 为显示名称，{1}/{2} 为规则参数
var defaultMessages = map[string]map[ruleconf.RuleType]string{
	"en": {
		ruleconf.RuleRequired:       "The {0} field is required.",
		ruleconf.RuleEmailAddress:   "The {0} field is not a valid e-mail address.",
		ruleconf.RuleUrl:            "The {0} field is not a valid fully-qualified http, https, or ftp URL.",
		ruleconf.RuleCreditCard:     "The {0} field is not a valid credit card number.",
		ruleconf.RulePhone:          "The {0} field is not a valid phone number.",
		ruleconf.RuleMinLength:      "The field {0} must be a string or array type with a minimum length of '{1}'.",
		ruleconf.RuleMaxLength:      "The field {0} must be a string or array type with a maximum length of '{1}'.",
		ruleconf.RuleStringLength:   "The field {0} must be a string with a minimum length of {1} and a maximum length of {2}.",
		ruleconf.RuleRange:          "The field {0} must be between {1} and {2}.",
		ruleconf.RuleRegex:          "The field {0} must match the regular expression '{1}'.",
		ruleconf.RuleFileExtensions: "The {0} field only accepts files with the following extensions: {1}",
		ruleconf.RuleEnumDataType:   "The field {0} is invalid.",
		ruleconf.RuleCustom:         "The field {0} is invalid.",
	},
	"zh": {
		ruleconf.RuleRequired:       "{0}为必填字段",
		ruleconf.RuleEmailAddress:   "{0}必须是一个有效的邮箱",
		ruleconf.RuleUrl:            "{0}必须是一个有效的URL",
		ruleconf.RuleCreditCard:     "{0}必须是一个有效的信用卡号",
		ruleconf.RulePhone:          "{0}必须是一个有效的电话号码",
		ruleconf.RuleMinLength:      "{0}长度必须至少为{1}",
		ruleconf.RuleMaxLength:      "{0}长度不能超过{1}",
		ruleconf.RuleStringLength:   "{0}长度必须在{1}和{2}之间",
		ruleconf.RuleRange:          "{0}必须在{1}和{2}之间",
		ruleconf.RuleRegex:          "{0}必须匹配正则表达式'{1}'",
		ruleconf.RuleFileExtensions: "{0}只接受以下扩展名的文件: {1}",
		ruleconf.RuleEnumDataType:   "{0}无效",
		ruleconf.RuleCustom:         "{0}无效",
	},
}

// messages 默认错误消息翻译
type messages struct {
	trans ut.Translator
}

// newMessages 创建指定语言的消息翻译，不支持的语言回退到英文
func newMessages(locale string) *messages {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())

	// 模板是常量，注册失败属于编程错误
	for lang, texts := range defaultMessages {
		trans, found := uni.GetTranslator(lang)
		if !found {
			panic(fmt.Sprintf("validation: no translator for locale %q", lang))
		}
		for typ, text := range texts {
			if err := trans.Add(typ, text, true); err != nil {
				panic(fmt.Sprintf("validation: add %s message for %q: %v", typ, lang, err))
			}
		}
	}

	// 不支持的语言返回回退翻译器（en）
	trans, _ := uni.GetTranslator(strings.ToLower(strings.TrimSpace(locale)))
	return &messages{trans: trans}
}

// Locale 当前语言
func (m *messages) Locale() string {
	return m.trans.Locale()
}

// format 生成失败消息
// 自定义消息中的 {0} 替换为显示名称，否则使用默认模板
func (m *messages) format(v Validator, displayName string) string {
	if custom := v.Message(); custom != "" {
		return strings.ReplaceAll(custom, "{0}", displayName)
	}

	params := append([]string{displayName}, v.Params()...)
	text, err := m.trans.T(v.Type(), params...)
	if err != nil {
		return displayName + " is invalid."
	}
	return text
}
