package validation

import "errors"

// Result 成功/失败二选一的结果
// 成功时 Value 可以是空列表；失败时 Value 是同样形状、已填充的失败列表
type Result[T any] struct {
	value  T
	failed bool
}

// Success 创建成功结果
func Success[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failure 创建失败结果
func Failure[T any](value T) Result[T] {
	return Result[T]{value: value, failed: true}
}

// IsSuccess 是否成功
func (r Result[T]) IsSuccess() bool { return !r.failed }

// IsError 是否失败
func (r Result[T]) IsError() bool { return r.failed }

// Value 结果值
func (r Result[T]) Value() T { return r.value }

// newDetailsResult 按是否有错误决定结果类型
func newDetailsResult(details []ValidationErrorDetail) Result[[]ValidationErrorDetail] {
	if details == nil {
		details = []ValidationErrorDetail{}
	}
	if len(details) == 0 {
		return Success(details)
	}
	return Failure(details)
}

// Err 把失败结果转换为 error，成功时返回 nil
func (r Result[T]) Err() error {
	if !r.failed {
		return nil
	}
	if details, ok := any(r.value).([]ValidationErrorDetail); ok {
		return ValidationErrors(details)
	}
	return errors.New("validation failed")
}
