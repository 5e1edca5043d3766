package validation

import (
	"reflect"
	"strings"
)

// ModelValidation 某个 Go 类型与某个模型配置的编译结果
// 构造后只读，可被并发使用
type ModelValidation struct {
	// ModelName 配置中的模型名称
	ModelName string
	// Alias 配置中的别名
	Alias string
	// GoType 绑定的类型
	GoType reflect.Type
	// Properties 按配置顺序排列
	Properties []*PropertyValidation
}

// PropertyValidation 单个属性的访问器与验证器
type PropertyValidation struct {
	Name       string
	Getter     FieldAccessor
	Validators []Validator
}

// Name 显示用模型名，优先使用别名
func (mv *ModelValidation) Name() string {
	if strings.TrimSpace(mv.Alias) != "" {
		return mv.Alias
	}
	return mv.ModelName
}

// DisplayName 属性显示名称，如 company.Name
func (mv *ModelValidation) DisplayName(property string) string {
	return mv.Name() + "." + property
}

// ValidatorCount 验证器总数
func (mv *ModelValidation) ValidatorCount() int {
	n := 0
	for _, p := range mv.Properties {
		n += len(p.Validators)
	}
	return n
}

// collect 依次执行所有属性的所有验证器，收集失败
// 单个属性的多个验证器全部执行，不会在首个失败时停止
func (mv *ModelValidation) collect(instance any, msgs *messages) []ValidationErrorDetail {
	details := make([]ValidationErrorDetail, 0)
	for _, prop := range mv.Properties {
		value, ok := prop.Getter(instance)
		if !ok {
			value = nil
		}

		displayName := mv.DisplayName(prop.Name)
		for _, v := range prop.Validators {
			failure := v.Check(value)
			if failure == nil {
				continue
			}
			failure.Namespace = displayName
			details = append(details, ValidationErrorDetail{
				ModelName:    mv.ModelName,
				PropertyName: prop.Name,
				Value:        value,
				Message:      msgs.format(v, displayName),
				Failure:      failure,
			})
		}
	}
	return details
}
