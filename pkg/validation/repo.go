package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"

	"katydid-common-validation/pkg/ruleconf"
)

// RuleSource 合并后的规则配置来源，*ruleconf.Provider 实现了该接口
type RuleSource interface {
	GetRules(name string) *ruleconf.Model
	GetRulesAlias(name, alias string) *ruleconf.Model
	AllRules() []*ruleconf.Model
}

// emptySource 没有任何配置
type emptySource struct{}

func (emptySource) GetRules(string) *ruleconf.Model              { return nil }
func (emptySource) GetRulesAlias(string, string) *ruleconf.Model { return nil }
func (emptySource) AllRules() []*ruleconf.Model                  { return nil }

// CacheStats 绑定缓存统计
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// aliasKey 按类型 + 别名缓存
type aliasKey struct {
	typ   reflect.Type
	alias string
}

// bindingKey 同一个模型配置与同一个类型只编译一次
type bindingKey struct {
	model *ruleconf.Model
	typ   reflect.Type
}

// Repo 验证仓库：规则编译缓存 + 执行器
//
// 设计目标：
//   - 每个 (类型) / (类型, 别名) 首次验证时编译一次，之后复用
//   - 并发首次访问同一个键只编译一次
//   - 编译失败不缓存，下次访问重新编译
type Repo struct {
	rules    RuleSource
	compiler *Compiler
	messages *messages
	logger   *zap.Logger

	byType   sync.Map // reflect.Type → *ModelValidation
	byAlias  sync.Map // aliasKey → *ModelValidation
	bindings sync.Map // bindingKey → *ModelValidation
	group    singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// Option Repo 选项
type Option func(*Repo)

// WithCompiler 使用指定的编译器（用于注册枚举、自定义规则）
func WithCompiler(c *Compiler) Option {
	return func(r *Repo) {
		if c != nil {
			r.compiler = c
		}
	}
}

// WithLocale 默认错误消息语言（en、zh），默认 en
func WithLocale(locale string) Option {
	return func(r *Repo) {
		r.messages = newMessages(locale)
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repo) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRepo 创建验证仓库
func NewRepo(rules RuleSource, opts ...Option) *Repo {
	if rules == nil {
		rules = emptySource{}
	}
	r := &Repo{
		rules:  rules,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.compiler == nil {
		r.compiler = NewCompiler()
	}
	if r.messages == nil {
		r.messages = newMessages("en")
	}
	return r
}

// ============================================================================
// 默认实例
// ============================================================================

var (
	defaultRepo atomic.Pointer[Repo]
	defaultOnce sync.Once
)

// Default 获取默认仓库，未设置时为没有任何规则的仓库
func Default() *Repo {
	defaultOnce.Do(func() {
		defaultRepo.CompareAndSwap(nil, NewRepo(nil))
	})
	return defaultRepo.Load()
}

// SetDefault 设置默认仓库
func SetDefault(r *Repo) {
	if r == nil {
		return
	}
	defaultOnce.Do(func() {})
	defaultRepo.Store(r)
}

// Validate 使用默认仓库验证
func Validate(instance any) (Result[[]ValidationErrorDetail], error) {
	return Default().Validate(instance)
}

// ============================================================================
// 规则查询
// ============================================================================

// GetRules 类型对应模型的描述性规则，类型名即模型名
func (r *Repo) GetRules(typ reflect.Type) ([]ValidationRule, error) {
	return DescribeModel(r.rules.GetRules(typeName(typ)))
}

// GetRulesAlias 类型 + 别名对应模型的描述性规则
func (r *Repo) GetRulesAlias(typ reflect.Type, alias string) ([]ValidationRule, error) {
	return DescribeModel(r.rules.GetRulesAlias(typeName(typ), alias))
}

// GetRulesByName 按模型名称查询描述性规则
func (r *Repo) GetRulesByName(name string) ([]ValidationRule, error) {
	return DescribeModel(r.rules.GetRules(name))
}

// GetRulesByNameAlias 按模型名称 + 别名查询描述性规则
func (r *Repo) GetRulesByNameAlias(name, alias string) ([]ValidationRule, error) {
	return DescribeModel(r.rules.GetRulesAlias(name, alias))
}

// AllRules 所有模型的描述性规则
func (r *Repo) AllRules() ([]ValidationRule, error) {
	out := make([]ValidationRule, 0)
	var errs []error
	for _, m := range r.rules.AllRules() {
		rules, err := DescribeModel(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, rules...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Lookup 查找模型配置，找不到返回 nil
func (r *Repo) Lookup(name, alias string) *ruleconf.Model {
	if strings.TrimSpace(alias) == "" {
		return r.rules.GetRules(name)
	}
	return r.rules.GetRulesAlias(name, alias)
}

// RulesFor 类型参数对应模型的描述性规则
func RulesFor[T any](r *Repo) ([]ValidationRule, error) {
	return r.GetRules(reflect.TypeOf((*T)(nil)).Elem())
}

// ============================================================================
// 验证
// ============================================================================

// Validate 验证实例，nil 实例直接成功
// 配置错误（规则无法编译、属性无法绑定）通过 error 返回
func (r *Repo) Validate(instance any) (Result[[]ValidationErrorDetail], error) {
	return r.ValidateAlias(instance, "")
}

// ValidateAlias 按别名对应的模型配置验证实例
func (r *Repo) ValidateAlias(instance any, alias string) (Result[[]ValidationErrorDetail], error) {
	if isNil(instance) {
		return newDetailsResult(nil), nil
	}

	mv, err := r.Binding(reflect.TypeOf(instance), alias)
	if err != nil {
		return Result[[]ValidationErrorDetail]{}, err
	}
	return newDetailsResult(mv.collect(instance, r.messages)), nil
}

// Binding 获取（必要时编译）类型 + 别名的绑定
// typ 为 nil 时返回没有任何属性的绑定，不缓存
func (r *Repo) Binding(typ reflect.Type, alias string) (*ModelValidation, error) {
	typ = indirectType(typ)
	if typ == nil {
		return &ModelValidation{}, nil
	}
	alias = strings.TrimSpace(alias)

	cache, key := r.cacheFor(typ, alias)
	if v, ok := cache.Load(key); ok {
		r.hits.Add(1)
		return v.(*ModelValidation), nil
	}
	r.misses.Add(1)

	// 同名的函数内局部类型 PkgPath/String 相同，按类型描述符地址区分
	sfKey := fmt.Sprintf("%p|%s", typ, foldKey(alias))
	v, err, _ := r.group.Do(sfKey, func() (any, error) {
		if v, ok := cache.Load(key); ok {
			return v, nil
		}

		mv, err := r.bind(typ, r.Lookup(typeName(typ), alias))
		if err != nil {
			return nil, err
		}
		actual, _ := cache.LoadOrStore(key, mv)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ModelValidation), nil
}

// cacheFor 别名为空时按类型缓存，否则按 (类型, 别名) 缓存
func (r *Repo) cacheFor(typ reflect.Type, alias string) (*sync.Map, any) {
	if alias == "" {
		return &r.byType, typ
	}
	return &r.byAlias, aliasKey{typ: typ, alias: foldKey(alias)}
}

// bind 编译模型配置，同一模型配置 + 类型共享同一个绑定
func (r *Repo) bind(typ reflect.Type, model *ruleconf.Model) (*ModelValidation, error) {
	if model == nil {
		return &ModelValidation{ModelName: typeName(typ), GoType: typ}, nil
	}

	key := bindingKey{model: model, typ: typ}
	if v, ok := r.bindings.Load(key); ok {
		return v.(*ModelValidation), nil
	}

	mv, err := r.compile(typ, model)
	if err != nil {
		r.logger.Error("validation binding failed",
			zap.String("type", typ.String()),
			zap.String("model", model.FullName()),
			zap.Error(err))
		return nil, err
	}

	actual, _ := r.bindings.LoadOrStore(key, mv)
	r.logger.Debug("validation binding compiled",
		zap.String("type", typ.String()),
		zap.String("model", model.FullName()),
		zap.Int("validators", mv.ValidatorCount()))
	return actual.(*ModelValidation), nil
}

// compile 为每个属性解析访问器、编译规则，收集所有错误
func (r *Repo) compile(typ reflect.Type, model *ruleconf.Model) (*ModelValidation, error) {
	mv := &ModelValidation{
		ModelName:  model.Name,
		Alias:      model.Alias,
		GoType:     typ,
		Properties: make([]*PropertyValidation, 0, len(model.Properties)),
	}

	var errs []error
	for _, prop := range model.Properties {
		if prop == nil {
			continue
		}

		getter, ok := resolveAccessor(typ, prop.Name)
		if !ok {
			errs = append(errs, &BindError{Model: model.Name, Property: prop.Name, TypeName: typ.String()})
			continue
		}

		pv := &PropertyValidation{
			Name:       prop.Name,
			Getter:     getter,
			Validators: make([]Validator, 0, len(prop.Rules)),
		}
		for _, rule := range prop.Rules {
			if rule == nil {
				continue
			}
			v, err := r.compiler.Compile(rule, model.Name, prop.Name)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			pv.Validators = append(pv.Validators, v)
		}
		mv.Properties = append(mv.Properties, pv)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return mv, nil
}

// Stats 绑定缓存统计
func (r *Repo) Stats() CacheStats {
	size := 0
	count := func(_, _ any) bool {
		size++
		return true
	}
	r.byType.Range(count)
	r.byAlias.Range(count)

	return CacheStats{
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
		Size:   size,
	}
}

// Clear 清空绑定缓存（配置重新加载后使用）
func (r *Repo) Clear() {
	reset := func(m *sync.Map) {
		m.Range(func(key, _ any) bool {
			m.Delete(key)
			return true
		})
	}
	reset(&r.byType)
	reset(&r.byAlias)
	reset(&r.bindings)
}

// Compiler 当前编译器
func (r *Repo) Compiler() *Compiler {
	return r.compiler
}

// Locale 默认错误消息语言
func (r *Repo) Locale() string {
	return r.messages.Locale()
}

func indirectType(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ
}

func typeName(typ reflect.Type) string {
	typ = indirectType(typ)
	if typ == nil {
		return ""
	}
	return typ.Name()
}

func foldKey(s string) string {
	return cases.Fold().String(s)
}
