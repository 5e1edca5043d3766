package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/go-playground/validator/v10"

	"katydid-common-validation/pkg/ruleconf"
)

// ============================================================================
// 可执行验证器
// ============================================================================

// Validator 已编译的可执行验证器
type Validator interface {
	// Type 规则类型
	Type() ruleconf.RuleType
	// Check 验证单个值，通过返回 nil
	Check(value any) *FieldFailure
	// Message 配置的自定义错误消息，空字符串表示使用默认消息
	Message() string
	// Params 默认消息模板参数
	Params() []string
}

// CustomFunc 自定义规则函数，params 为 "<param> : <value>" 格式的参数
type CustomFunc func(value any, params []string) bool

var (
	errNotString = errors.New("value is not a string")
	errNoLength  = errors.New("value has no length")
	errNotNumber = errors.New("value is not a number or date")
	errNotEnum   = errors.New("value is not a string or integer")
)

// ruleValidator Validator 的唯一实现
// 构造后不可变，共享实例可被并发使用
type ruleValidator struct {
	typ     ruleconf.RuleType
	message string
	params  []string
	// nilable 值为 nil 时也执行 test（仅 Required）
	nilable bool
	test    func(value any) (tag, param string, err error)
}

// Type 实现 Validator 接口
func (v *ruleValidator) Type() ruleconf.RuleType { return v.typ }

// Message 实现 Validator 接口
func (v *ruleValidator) Message() string { return v.message }

// Params 实现 Validator 接口
func (v *ruleValidator) Params() []string { return v.params }

// Check 实现 Validator 接口
func (v *ruleValidator) Check(value any) *FieldFailure {
	if !v.nilable && isNil(value) {
		return nil
	}
	tag, param, err := v.test(value)
	if err == nil {
		return nil
	}

	failure := &FieldFailure{
		Type:  v.typ,
		Tag:   tag,
		Param: param,
		Value: value,
		Err:   err,
	}
	// 底层库返回的错误带有更精确的 tag/param
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		failure.Tag = fieldErrs[0].Tag()
		failure.Param = fieldErrs[0].Param()
	}
	return failure
}

// ============================================================================
// 构造函数
// ============================================================================

func buildRequired(c *Compiler, _ ValidationRule) (*ruleValidator, error) {
	return &ruleValidator{
		typ:     ruleconf.RuleRequired,
		nilable: true,
		test: func(value any) (string, string, error) {
			if isNil(value) {
				return "required", "", c.engine.check(nil, "required")
			}
			// 只有字符串存在"空"的概念，空白字符串视为缺失
			if s, ok := indirect(value).(string); ok {
				return "required", "", c.engine.check(strings.TrimSpace(s), "required")
			}
			return "required", "", nil
		},
	}, nil
}

// buildFormat 字符串格式检查（email、url、credit_card、phone）
func buildFormat(typ ruleconf.RuleType, tag string) func(*Compiler, ValidationRule) (*ruleValidator, error) {
	return func(c *Compiler, _ ValidationRule) (*ruleValidator, error) {
		return &ruleValidator{
			typ: typ,
			test: func(value any) (string, string, error) {
				s, ok := indirect(value).(string)
				if !ok {
					return tag, "", errNotString
				}
				return tag, "", c.engine.check(s, tag)
			},
		}, nil
	}
}

func buildMinLength(c *Compiler, r ValidationRule) (*ruleValidator, error) {
	n := r.(*MinLengthRule).Min
	tag := fmt.Sprintf("min=%d", n)
	return &ruleValidator{
		typ:    ruleconf.RuleMinLength,
		params: []string{strconv.Itoa(n)},
		test: func(value any) (string, string, error) {
			return lengthCheck(c, value, tag)
		},
	}, nil
}

func buildMaxLength(c *Compiler, r ValidationRule) (*ruleValidator, error) {
	n := r.(*MaxLengthRule).Max
	tag := fmt.Sprintf("max=%d", n)
	return &ruleValidator{
		typ:    ruleconf.RuleMaxLength,
		params: []string{strconv.Itoa(n)},
		test: func(value any) (string, string, error) {
			return lengthCheck(c, value, tag)
		},
	}, nil
}

// lengthCheck 字符串按字符数，集合按元素数
func lengthCheck(c *Compiler, value any, tag string) (string, string, error) {
	v := indirect(value)
	switch reflect.ValueOf(v).Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return tag, "", c.engine.check(v, tag)
	default:
		return tag, "", errNoLength
	}
}

func buildStringLength(c *Compiler, r ValidationRule) (*ruleValidator, error) {
	sl := r.(*StringLengthRule)
	if sl.Min > sl.Max {
		return nil, fmt.Errorf("minimum length %d is greater than maximum length %d", sl.Min, sl.Max)
	}
	tag := fmt.Sprintf("min=%d,max=%d", sl.Min, sl.Max)
	return &ruleValidator{
		typ:    ruleconf.RuleStringLength,
		params: []string{strconv.Itoa(sl.Min), strconv.Itoa(sl.Max)},
		test: func(value any) (string, string, error) {
			s, ok := indirect(value).(string)
			if !ok {
				return tag, "", errNotString
			}
			return tag, "", c.engine.check(s, tag)
		},
	}, nil
}

func buildRange(c *Compiler, r ValidationRule) (*ruleValidator, error) {
	rr := r.(*RangeRule)
	if rr.Min > rr.Max {
		return nil, fmt.Errorf("minimum %s is greater than maximum %s", formatFloat(rr.Min), formatFloat(rr.Max))
	}
	lo, hi := formatFloat(rr.Min), formatFloat(rr.Max)
	tag := fmt.Sprintf("gte=%s,lte=%s", lo, hi)
	return &ruleValidator{
		typ:    ruleconf.RuleRange,
		params: []string{lo, hi},
		test: func(value any) (string, string, error) {
			f, ok := toFloat(indirect(value))
			if !ok {
				return "range", "", errNotNumber
			}
			return "range", "", c.engine.check(f, tag)
		},
	}, nil
}

func buildRegex(_ *Compiler, r ValidationRule) (*ruleValidator, error) {
	pattern := r.(*RegexRule).Pattern
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, boundError("pattern", err)
	}
	re.MatchTimeout = 2 * time.Second

	return &ruleValidator{
		typ:    ruleconf.RuleRegex,
		params: []string{pattern},
		test: func(value any) (string, string, error) {
			var s string
			switch v := indirect(value).(type) {
			case string:
				s = v
			default:
				s = fmt.Sprint(v)
			}
			if s == "" {
				return "regex", pattern, nil
			}
			m, err := re.FindStringMatch(s)
			if err != nil {
				return "regex", pattern, err
			}
			// 必须整串匹配
			if m == nil || m.Index != 0 || m.Length != len([]rune(s)) {
				return "regex", pattern, fmt.Errorf("%q does not match /%s/", s, pattern)
			}
			return "regex", pattern, nil
		},
	}, nil
}

func buildFileExtensions(c *Compiler, r ValidationRule) (*ruleValidator, error) {
	raw := r.(*FileExtensionsRule).Extensions
	normalized, err := normalizeExtensions(raw)
	if err != nil {
		return nil, boundError("extensions", err)
	}
	if normalized == "" {
		return nil, boundError("extensions", errors.New("no file extensions configured"))
	}
	tag := tagFileExt + "=" + normalized
	return &ruleValidator{
		typ:    ruleconf.RuleFileExtensions,
		params: []string{raw},
		test: func(value any) (string, string, error) {
			s, ok := indirect(value).(string)
			if !ok {
				return tagFileExt, normalized, errNotString
			}
			return tagFileExt, normalized, c.engine.check(s, tag)
		},
	}, nil
}

func buildEnum(c *Compiler, r ValidationRule) (*ruleValidator, error) {
	name := r.(*EnumDataTypeRule).EnumName
	enum, ok := c.enums.Lookup(name)
	if !ok {
		return nil, boundError("enum", fmt.Errorf("enum type %q is not registered", name))
	}
	// 成员名称可以包含任意字符，直接查成员表
	names := strings.Join(enum.Names(), " ")
	values := strings.Join(enum.valueStrings(), " ")

	return &ruleValidator{
		typ:    ruleconf.RuleEnumDataType,
		params: []string{enum.Name()},
		test: func(value any) (string, string, error) {
			v := indirect(value)
			rv := reflect.ValueOf(v)
			switch rv.Kind() {
			case reflect.String:
				s := rv.String()
				if s == "" || enum.HasName(s) {
					return "oneof", names, nil
				}
				return "oneof", names, fmt.Errorf("%q is not a member of %s", s, enum.Name())
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				return enumValueCheck(enum, rv.Int(), values)
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				u := rv.Uint()
				if u > math.MaxInt64 {
					return "oneof", values, fmt.Errorf("%d is not a value of %s", u, enum.Name())
				}
				return enumValueCheck(enum, int64(u), values)
			default:
				return "oneof", "", errNotEnum
			}
		},
	}, nil
}

func enumValueCheck(enum *Enum, n int64, values string) (string, string, error) {
	if enum.HasValue(n) {
		return "oneof", values, nil
	}
	return "oneof", values, fmt.Errorf("%d is not a value of %s", n, enum.Name())
}

func buildCustom(c *Compiler, r ValidationRule) (*ruleValidator, error) {
	cr := r.(*CustomRule)
	fn, ok := c.custom(cr.Name)
	if !ok {
		return nil, boundError("custom", fmt.Errorf("no custom rule registered under %q", cr.Name))
	}
	params := cr.Parameters
	return &ruleValidator{
		typ:    ruleconf.RuleCustom,
		params: params,
		test: func(value any) (string, string, error) {
			if fn(value, params) {
				return "custom", "", nil
			}
			return "custom", cr.Name, fmt.Errorf("custom rule %q failed", cr.Name)
		},
	}, nil
}

// ============================================================================
// 值处理
// ============================================================================

// isNil nil 接口或 nil 指针/集合
func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// indirect 解引用多级指针
func indirect(value any) any {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// toFloat 数值、数值字符串、日期（ticks）转换为 float64
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case time.Time:
		return float64(timeTicks(v)), true
	case string:
		f, err := parseRangeBound(v)
		return f, err == nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
