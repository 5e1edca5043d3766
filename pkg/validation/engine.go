package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ============================================================================
// Playground 检查引擎适配器
// ============================================================================

const (
	tagPhone   = "reve_phone"
	tagFileExt = "reve_file_ext"
)

// phonePattern 电话号码：可选 +，数字与常见分隔符，可选分机号
var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-.]*[0-9][0-9 ()\-.]*((x|ext\.?|extension)\s*[0-9]+)?$`)

// playgroundEngine 基于 go-playground/validator 的单值检查引擎
// 设计模式：适配器模式 - 规则编译为 tag 后交给第三方库执行
type playgroundEngine struct {
	validator *validator.Validate
}

// newPlaygroundEngine 创建检查引擎并注册内置库没有的检查
func newPlaygroundEngine() *playgroundEngine {
	v := validator.New()

	// tag 与函数都是常量，注册失败属于编程错误
	if err := v.RegisterValidation(tagPhone, isPhone); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tagPhone, err))
	}
	if err := v.RegisterValidation(tagFileExt, isFileExtension); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tagFileExt, err))
	}

	return &playgroundEngine{validator: v}
}

// check 验证单个值
func (e *playgroundEngine) check(value any, tag string) error {
	return e.validator.Var(value, tag)
}

// isPhone 电话号码检查
func isPhone(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits > 0 && phonePattern.MatchString(strings.ToLower(s))
}

// isFileExtension 文件扩展名检查，参数为空格分隔的扩展名列表（已规范化为 .ext 小写）
func isFileExtension(fl validator.FieldLevel) bool {
	ext := strings.ToLower(filepath.Ext(fl.Field().String()))
	if ext == "" {
		return false
	}
	for _, allowed := range strings.Fields(fl.Param()) {
		if ext == allowed {
			return true
		}
	}
	return false
}

// extReserved 扩展名中不能出现的字符：tag 语法字符和空白
const extReserved = "|,= \t\r\n"

// normalizeExtensions 把 "png, .JPG,gif" 规范化为 ".png .jpg .gif"
// 扩展名包含 tag 语法字符时返回错误
func normalizeExtensions(raw string) (string, error) {
	var out []string
	for _, ext := range strings.Split(raw, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if strings.ContainsAny(ext, extReserved) {
			return "", fmt.Errorf("invalid file extension %q", ext)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext == "." {
			return "", fmt.Errorf("invalid file extension %q", ext)
		}
		out = append(out, ext)
	}
	return strings.Join(out, " "), nil
}
