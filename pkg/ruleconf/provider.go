package ruleconf

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// ErrDuplicateModel 两个模型的查找键（FullName 折叠大小写后）相同
var ErrDuplicateModel = errors.New("duplicate model lookup key")

// Provider 合并模型配置与规则参数配置
//
// 设计目标：
//   - 构造时建立一次索引：FullName（大小写折叠）→ Model
//   - 首次访问某个模型时才为其规则绑定参数，之后直接返回缓存结果
//   - 构造后只读，可被多个 goroutine 并发使用
type Provider struct {
	models    []*Model
	arguments []RuleArgument
	index     map[string]*Model
	logger    *zap.Logger

	lastWriteWins bool
}

// Option Provider 选项
type Option func(*Provider)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLastWriteWins 查找键冲突时以后出现的模型为准（仅记录警告）
// 默认冲突视为配置错误
func WithLastWriteWins() Option {
	return func(p *Provider) {
		p.lastWriteWins = true
	}
}

// NewProvider 创建 Provider，配置源在此时读取一次
func NewProvider(models ModelSource, args ArgumentSource, opts ...Option) (*Provider, error) {
	if models == nil {
		models = StaticModels{}
	}
	if args == nil {
		args = StaticArguments{}
	}

	p := &Provider{
		models:    models.ModelConfig().Models,
		arguments: args.ArgumentConfig().RuleDefinitions,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.buildIndex(); err != nil {
		return nil, err
	}

	p.logger.Debug("validation config indexed",
		zap.Int("models", len(p.index)),
		zap.Int("arguments", len(p.arguments)))
	return p, nil
}

// buildIndex 建立查找索引
func (p *Provider) buildIndex() error {
	p.index = make(map[string]*Model, len(p.models))

	var errs []error
	for _, m := range p.models {
		if m == nil {
			continue
		}
		key := foldKey(m.FullName())
		if prev, ok := p.index[key]; ok && prev != m {
			if !p.lastWriteWins {
				errs = append(errs, fmt.Errorf("%w: %q declared by %q and %q", ErrDuplicateModel, key, prev.FullName(), m.FullName()))
				continue
			}
			p.logger.Warn("validation model lookup key collision, keeping last",
				zap.String("key", key),
				zap.String("previous", prev.FullName()),
				zap.String("current", m.FullName()))
		}
		p.index[key] = m
	}
	return errors.Join(errs...)
}

// GetRules 按模型名称查找，找不到返回 nil
func (p *Provider) GetRules(name string) *Model {
	m, ok := p.index[foldKey(name)]
	if !ok {
		return nil
	}
	return p.populate(m)
}

// GetRulesAlias 按模型名称 + 别名查找，别名为空时等同 GetRules
func (p *Provider) GetRulesAlias(name, alias string) *Model {
	if strings.TrimSpace(alias) == "" {
		return p.GetRules(name)
	}
	return p.GetRules(name + "." + alias)
}

// AllRules 返回所有模型，未绑定参数的模型在此时完成绑定
func (p *Provider) AllRules() []*Model {
	out := make([]*Model, 0, len(p.models))
	for _, m := range p.models {
		if m == nil {
			continue
		}
		out = append(out, p.populate(m))
	}
	return out
}

// Arguments 返回全部规则参数（只读）
func (p *Provider) Arguments() []RuleArgument {
	return p.arguments
}

// populate 为模型的所有规则绑定参数，每个模型只执行一次
func (p *Provider) populate(m *Model) *Model {
	if m.LookupComplete() {
		return m
	}
	m.populate.Do(func() {
		lookup := m.LookupName()
		for _, prop := range m.Properties {
			if prop == nil {
				continue
			}
			for _, rule := range prop.Rules {
				if rule == nil {
					continue
				}
				rule.Arguments = LookupArguments(p.arguments, lookup, prop.Name, rule.Type, rule.Name)
			}
		}
		m.lookupComplete.Store(true)
	})
	return m
}

// foldKey 查找键统一做大小写折叠
func foldKey(s string) string {
	return cases.Fold().String(s)
}
