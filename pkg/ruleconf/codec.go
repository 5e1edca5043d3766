package ruleconf

import "strings"

// 规则参数编码格式：model.property.parameter=value
// 名称段分隔符任选其一，值分隔符取第一次出现的位置
const (
	nameDelimiters  = ",.;_-"
	valueDelimiters = "=:"
)

// ArgumentParts 规则参数字符串解析后的各个部分
type ArgumentParts struct {
	// FullName 值分隔符之前的全部内容
	FullName string
	// Model 第 0 段，对应 Model.LookupName
	Model string
	// Property 第 1 段
	Property string
	// Parameter 第 2 段
	Parameter string
	// Value 值分隔符之后的内容
	Value string
}

// ParseArgument 解析规则参数字符串
// 纯函数，不会失败：格式不完整时缺失的段为空字符串
//
// 注意：
//   - 值只按第一个 '=' 或 ':' 切分，值本身可以继续包含这两个字符
//   - 名称只取前三段，第三段之后的内容被丢弃
func ParseArgument(raw string) ArgumentParts {
	var parts ArgumentParts

	if idx := strings.IndexAny(raw, valueDelimiters); idx >= 0 {
		parts.FullName = raw[:idx]
		parts.Value = raw[idx+1:]
	} else {
		parts.FullName = raw
	}

	// 按位置切分，空段保留位置
	segments := splitAny(parts.FullName, nameDelimiters)
	parts.Model = segment(segments, 0)
	parts.Property = segment(segments, 1)
	parts.Parameter = segment(segments, 2)
	return parts
}

// EncodeArgument 生成规范格式的规则参数字符串
func EncodeArgument(model, property, parameter, value string) string {
	var b strings.Builder
	b.Grow(len(model) + len(property) + len(parameter) + len(value) + 3)
	b.WriteString(model)
	b.WriteByte('.')
	b.WriteString(property)
	b.WriteByte('.')
	b.WriteString(parameter)
	b.WriteByte('=')
	b.WriteString(value)
	return b.String()
}

// splitAny 按任意分隔符切分，保留空段
func splitAny(s, seps string) []string {
	out := make([]string, 0, 4)
	start := 0
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(seps, s[i]) >= 0 {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func segment(segments []string, i int) string {
	if i < len(segments) {
		return segments[i]
	}
	return ""
}
