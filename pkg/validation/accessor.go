package validation

import (
	"reflect"
)

// FieldAccessor 读取实例上某个属性的当前值
// 第二个返回值为 false 表示实例类型不匹配
type FieldAccessor func(instance any) (any, bool)

// resolveAccessor 按名称解析属性访问器
// 先查找导出字段（包含嵌入结构体提升的字段），再查找无参数、单返回值的方法
func resolveAccessor(typ reflect.Type, name string) (FieldAccessor, bool) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	if typ.Kind() == reflect.Struct {
		if field, ok := typ.FieldByName(name); ok && field.IsExported() {
			return fieldAccessor(typ, field.Index), true
		}
	}

	if method, ok := reflect.PointerTo(typ).MethodByName(name); ok {
		// 方法类型包含接收者
		if method.Type.NumIn() == 1 && method.Type.NumOut() == 1 {
			return methodAccessor(typ, name), true
		}
	}
	return nil, false
}

// fieldAccessor 闭包捕获字段索引
func fieldAccessor(typ reflect.Type, index []int) FieldAccessor {
	return func(instance any) (any, bool) {
		v, ok := structValue(instance, typ)
		if !ok {
			return nil, false
		}

		fieldValue, err := v.FieldByIndexErr(index)
		if err != nil {
			// 嵌入的指针结构体为 nil，值视为缺失
			return nil, true
		}
		if !fieldValue.IsValid() || !fieldValue.CanInterface() {
			return nil, false
		}
		return fieldValue.Interface(), true
	}
}

// methodAccessor 调用 getter 方法
func methodAccessor(typ reflect.Type, name string) FieldAccessor {
	return func(instance any) (any, bool) {
		v, ok := structValue(instance, typ)
		if !ok {
			return nil, false
		}

		// 指针接收者的方法需要可寻址的值
		if !v.CanAddr() {
			p := reflect.New(typ)
			p.Elem().Set(v)
			v = p.Elem()
		}

		m := v.Addr().MethodByName(name)
		if !m.IsValid() {
			return nil, false
		}
		return m.Call(nil)[0].Interface(), true
	}
}

// structValue 解引用到 typ 类型的值
func structValue(instance any, typ reflect.Type) (reflect.Value, bool) {
	v := reflect.ValueOf(instance)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Type() != typ {
		return reflect.Value{}, false
	}
	return v, true
}
