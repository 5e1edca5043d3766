package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"katydid-common-validation/pkg/ruleconf"
)

// Company 与配置中的 company 模型对应
type Company struct {
	Id            *int
	Name          string
	Desc          string
	BusinessUnits []BusinessUnit
}

// BusinessUnit 与配置中的 businessunit 模型（别名 bu）对应
type BusinessUnit struct {
	Id   *int
	Name string
	Desc string
}

// Person 通过 getter 方法暴露属性
type Person struct {
	First string
	Last  string
}

func (p Person) FullName() string {
	if p.First == "" && p.Last == "" {
		return ""
	}
	return p.First + " " + p.Last
}

func fakeModels() *ruleconf.ValidationModelConfig {
	return &ruleconf.ValidationModelConfig{
		Models: []*ruleconf.Model{
			ruleconf.NewModel("company", "",
				ruleconf.NewProperty("Id", ruleconf.NewRule(ruleconf.RuleRequired, "")),
				ruleconf.NewProperty("Name",
					ruleconf.NewRule(ruleconf.RuleRequired, ""),
					ruleconf.NewRule(ruleconf.RuleMinLength, ""),
					ruleconf.NewRule(ruleconf.RuleMaxLength, "")),
				ruleconf.NewProperty("Desc", ruleconf.NewRule(ruleconf.RuleMaxLength, "")),
				ruleconf.NewProperty("BusinessUnits"),
			),
			ruleconf.NewModel("businessunit", "bu",
				ruleconf.NewProperty("Id", ruleconf.NewRule(ruleconf.RuleRequired, "").WithMessages("{0} is mandatory", "", "")),
				ruleconf.NewProperty("Name",
					ruleconf.NewRule(ruleconf.RuleRequired, ""),
					ruleconf.NewRule(ruleconf.RuleStringLength, "")),
				ruleconf.NewProperty("Desc",
					ruleconf.NewRule(ruleconf.RuleRegex, "BusinessUnitRegexRule1"),
					ruleconf.NewRule(ruleconf.RuleRegex, "BusinessUnitRegexRule2")),
			),
			ruleconf.NewModel("person", "",
				ruleconf.NewProperty("FullName", ruleconf.NewRule(ruleconf.RuleRequired, "")),
			),
		},
	}
}

func fakeArguments() *ruleconf.RuleArgumentConfig {
	return &ruleconf.RuleArgumentConfig{
		RuleDefinitions: []ruleconf.RuleArgument{
			ruleconf.NewRuleArgument(ruleconf.RuleMinLength, "", "company.Name.min=1"),
			ruleconf.NewRuleArgument(ruleconf.RuleMaxLength, "", "company.Name.max=50"),
			ruleconf.NewRuleArgument(ruleconf.RuleMaxLength, "", "company.Desc.max=200"),
			ruleconf.NewRuleArgument(ruleconf.RuleStringLength, "", "bu.Name.minlength=1"),
			ruleconf.NewRuleArgument(ruleconf.RuleStringLength, "", "bu.Name.maxlength=10"),
			ruleconf.NewRuleArgument(ruleconf.RuleRegex, "BusinessUnitRegexRule1", "bu.Desc.pattern=^[A-Za-z ]*$"),
			ruleconf.NewRuleArgument(ruleconf.RuleRegex, "BusinessUnitRegexRule2", "bu.Desc.pattern=^.{0,64}$"),
		},
	}
}

func newProvider(t *testing.T, models *ruleconf.ValidationModelConfig, args *ruleconf.RuleArgumentConfig) *ruleconf.Provider {
	t.Helper()
	p, err := ruleconf.NewProvider(ruleconf.StaticModels{Config: models}, ruleconf.StaticArguments{Config: args})
	require.NoError(t, err)
	return p
}

func newFakeRepo(t *testing.T, opts ...Option) *Repo {
	t.Helper()
	return NewRepo(newProvider(t, fakeModels(), fakeArguments()), opts...)
}

// ruleWith 构造带参数的规则
func ruleWith(typ ruleconf.RuleType, name string, raws ...string) *ruleconf.Rule {
	rule := ruleconf.NewRule(typ, name)
	for _, raw := range raws {
		rule.Arguments = append(rule.Arguments, ruleconf.NewRuleArgument(typ, name, raw))
	}
	return rule
}

func intPtr(n int) *int { return &n }
