package ruleconf

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModels 测试用模型配置
// company 无别名；businessunit 别名 bu，Desc 上有两条按名称区分的 Regex 规则
func fakeModels() *ValidationModelConfig {
	return &ValidationModelConfig{
		Models: []*Model{
			NewModel("company", "",
				NewProperty("Id", NewRule(RuleRequired, "").WithMessages("Id is mandatory", "tech", "friendly")),
				NewProperty("Name",
					NewRule(RuleRequired, ""),
					NewRule(RuleMinLength, ""),
					NewRule(RuleMaxLength, "")),
				NewProperty("Desc", NewRule(RuleMaxLength, "")),
				NewProperty("BusinessUnits"),
			),
			NewModel("businessunit", "bu",
				NewProperty("Id", NewRule(RuleRequired, "")),
				NewProperty("Name",
					NewRule(RuleRequired, ""),
					NewRule(RuleStringLength, "")),
				NewProperty("Desc",
					NewRule(RuleRegex, "BusinessUnitRegexRule1"),
					NewRule(RuleRegex, "BusinessUnitRegexRule2")),
			),
		},
	}
}

func fakeArguments() *RuleArgumentConfig {
	return &RuleArgumentConfig{
		RuleDefinitions: []RuleArgument{
			NewRuleArgument(RuleMinLength, "", "company.Name.min=1"),
			NewRuleArgument(RuleMaxLength, "", "company.Name.max=50"),
			NewRuleArgument(RuleMaxLength, "", "Company.Desc.max=200"),
			NewRuleArgument(RuleStringLength, "", "bu.Name.minlength=1"),
			NewRuleArgument(RuleStringLength, "", "bu.Name.maxlength=10"),
			NewRuleArgument(RuleRegex, "BusinessUnitRegexRule1", "bu.Desc.pattern=^[A-Za-z ]*$"),
			NewRuleArgument(RuleRegex, "BusinessUnitRegexRule2", "bu.Desc.pattern=^.{0,64}$"),
			// 按模型名而不是别名配置的参数不会被绑定到别名模型
			NewRuleArgument(RuleStringLength, "", "businessunit.Name.minlength=3"),
		},
	}
}

func newFakeProvider(t *testing.T, opts ...Option) *Provider {
	t.Helper()
	p, err := NewProvider(StaticModels{Config: fakeModels()}, StaticArguments{Config: fakeArguments()}, opts...)
	require.NoError(t, err)
	return p
}

func TestProvider_GetRules(t *testing.T) {
	p := newFakeProvider(t)

	t.Run("按名称查找，大小写不敏感", func(t *testing.T) {
		m := p.GetRules("COMPANY")
		require.NotNil(t, m)
		assert.Equal(t, "company", m.Name)
		assert.True(t, m.LookupComplete())
	})

	t.Run("未配置的模型返回 nil", func(t *testing.T) {
		assert.Nil(t, p.GetRules("department"))
		assert.Nil(t, p.GetRulesAlias("company", "nope"))
	})

	t.Run("别名模型只能通过名称+别名查找", func(t *testing.T) {
		assert.Nil(t, p.GetRules("businessunit"))
		m := p.GetRulesAlias("BusinessUnit", "BU")
		require.NotNil(t, m)
		assert.Equal(t, "bu", m.Alias)
	})

	t.Run("空别名等同按名称查找", func(t *testing.T) {
		assert.Same(t, p.GetRules("company"), p.GetRulesAlias("company", " "))
	})
}

func TestProvider_ArgumentBinding(t *testing.T) {
	p := newFakeProvider(t)
	m := p.GetRules("company")
	require.NotNil(t, m)

	name := m.Properties[1]
	require.Equal(t, "Name", name.Name)
	assert.Empty(t, name.Rules[0].Arguments, "Required 没有参数")
	require.Len(t, name.Rules[1].Arguments, 1)
	assert.Equal(t, "1", name.Rules[1].Arguments[0].Value())
	require.Len(t, name.Rules[2].Arguments, 1)
	assert.Equal(t, "50", name.Rules[2].Arguments[0].Value())

	desc := m.Properties[2]
	require.Len(t, desc.Rules[0].Arguments, 1, "模型段大小写不敏感")
	assert.Equal(t, "200", desc.Rules[0].Arguments[0].Value())

	assert.Empty(t, m.Properties[3].Rules)
}

func TestProvider_DisambiguatedRules(t *testing.T) {
	p := newFakeProvider(t)
	m := p.GetRulesAlias("businessunit", "bu")
	require.NotNil(t, m)

	desc := m.Properties[2]
	require.Len(t, desc.Rules, 2)
	for _, rule := range desc.Rules {
		require.Len(t, rule.Arguments, 1, rule.Name)
		assert.Equal(t, rule.Name, rule.Arguments[0].Name)
	}
	assert.Equal(t, "^[A-Za-z ]*$", desc.Rules[0].Arguments[0].Value())
	assert.Equal(t, "^.{0,64}$", desc.Rules[1].Arguments[0].Value())

	name := m.Properties[1]
	require.Len(t, name.Rules[1].Arguments, 2, "别名模型按别名匹配参数")
	assert.Equal(t, "minlength", name.Rules[1].Arguments[0].Parameter())
	assert.Equal(t, "maxlength", name.Rules[1].Arguments[1].Parameter())
}

func TestProvider_Idempotent(t *testing.T) {
	p := newFakeProvider(t)

	first := p.GetRules("company")
	before := first.Properties[1].Rules[1].Arguments

	second := p.GetRules("company")
	assert.Same(t, first, second)
	assert.Equal(t, before, second.Properties[1].Rules[1].Arguments)
}

func TestProvider_UnqueriedModelStaysEmpty(t *testing.T) {
	cfg := fakeModels()
	p, err := NewProvider(StaticModels{Config: cfg}, StaticArguments{Config: fakeArguments()})
	require.NoError(t, err)

	p.GetRules("company")

	bu := cfg.Models[1]
	assert.False(t, bu.LookupComplete())
	for _, prop := range bu.Properties {
		for _, rule := range prop.Rules {
			assert.Empty(t, rule.Arguments)
		}
	}
}

func TestProvider_AllRules(t *testing.T) {
	p := newFakeProvider(t)

	models := p.AllRules()
	require.Len(t, models, 2)
	for _, m := range models {
		assert.True(t, m.LookupComplete(), m.FullName())
	}
}

func TestProvider_ConcurrentPopulate(t *testing.T) {
	p := newFakeProvider(t)

	var wg sync.WaitGroup
	results := make([]*Model, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.GetRulesAlias("businessunit", "bu")
		}(i)
	}
	wg.Wait()

	for _, m := range results {
		assert.Same(t, results[0], m)
		assert.Len(t, m.Properties[2].Rules[0].Arguments, 1)
	}
}

func TestProvider_Collision(t *testing.T) {
	cfg := &ValidationModelConfig{Models: []*Model{
		NewModel("company", "", NewProperty("Id", NewRule(RuleRequired, ""))),
		NewModel("Company", "", NewProperty("Name", NewRule(RuleRequired, ""))),
	}}

	t.Run("默认视为配置错误", func(t *testing.T) {
		_, err := NewProvider(StaticModels{Config: cfg}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateModel))
	})

	t.Run("后写入者生效", func(t *testing.T) {
		p, err := NewProvider(StaticModels{Config: cfg}, nil, WithLastWriteWins())
		require.NoError(t, err)
		m := p.GetRules("company")
		require.NotNil(t, m)
		assert.Equal(t, "Name", m.Properties[0].Name)
	})
}

func TestModel_Names(t *testing.T) {
	m := NewModel("businessunit", "bu")
	assert.Equal(t, "bu", m.LookupName())
	assert.Equal(t, "businessunit.bu", m.FullName())

	m = NewModel("company", "")
	assert.Equal(t, "company", m.LookupName())
	assert.Equal(t, "company", m.FullName())
}

func TestLookupArguments(t *testing.T) {
	args := fakeArguments().RuleDefinitions

	assert.Len(t, ArgumentsForModel(args, "COMPANY"), 3)
	assert.Len(t, ArgumentsForProperty(args, "bu", "desc"), 2)
	assert.Len(t, LookupArguments(args, "bu", "Desc", RuleRegex, "BusinessUnitRegexRule2"), 1)
	assert.Len(t, LookupArguments(args, "bu", "Desc", RuleRegex, "businessunitregexrule2"), 0, "规则名称大小写敏感")
	assert.Len(t, LookupArguments(args, "bu", "Desc", RuleRegex, ""), 2)
	assert.Len(t, LookupArguments(args, "bu", "Desc", RuleRequired, ""), 0)
}
