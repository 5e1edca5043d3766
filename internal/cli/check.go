package cli

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"katydid-common-validation/pkg/ruleconf"
	"katydid-common-validation/pkg/validation"
)

// ErrCheckFailed 存在无法编译的规则
var ErrCheckFailed = errors.New("rule check failed")

// checkFailure 一条无法编译的规则
type checkFailure struct {
	Model    string `json:"model"`
	Property string `json:"property"`
	Rule     string `json:"rule"`
	Error    string `json:"error"`
}

type checkReport struct {
	Models   int            `json:"models"`
	Rules    int            `json:"rules"`
	Failures []checkFailure `json:"failures"`
}

func newCheckCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile every configured rule and report failures",
		Long: `读取配置来源并编译每条规则。

模型查找键冲突、规则参数个数或格式错误都会被报告，存在任何失败时以非零状态退出。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json")
	return cmd
}

func runCheck(cmd *cobra.Command, format string) error {
	format, err := checkFormat(format)
	if err != nil {
		return err
	}
	e, err := envFrom(cmd)
	if err != nil {
		return err
	}

	// 冲突在构建 Provider 时报告
	p, err := e.provider(cmd.Context())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckFailed, err)
	}

	compiler := validation.NewCompiler()
	report := checkReport{Failures: make([]checkFailure, 0)}
	for _, m := range p.AllRules() {
		report.Models++
		for _, prop := range m.Properties {
			if prop == nil {
				continue
			}
			for _, rule := range prop.Rules {
				if rule == nil {
					continue
				}
				report.Rules++
				if err := checkRule(compiler, rule, m.Name, prop.Name); err != nil {
					report.Failures = append(report.Failures, checkFailure{
						Model:    m.FullName(),
						Property: prop.Name,
						Rule:     ruleLabel(rule.Type.String(), rule.Name),
						Error:    err.Error(),
					})
				}
			}
		}
	}

	if format == formatJSON {
		if err := renderJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		if len(report.Failures) > 0 {
			rows := make([]table.Row, 0, len(report.Failures))
			for _, f := range report.Failures {
				rows = append(rows, table.Row{f.Model, f.Property, f.Rule, f.Error})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Model", "Property", "Rule", "Error"}, rows)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d models, %d rules, %d failed\n",
			report.Models, report.Rules, len(report.Failures))
	}

	if len(report.Failures) > 0 {
		e.logger.Warn("rule check failed", zap.Int("failures", len(report.Failures)))
		return fmt.Errorf("%w: %d of %d rules", ErrCheckFailed, len(report.Failures), report.Rules)
	}
	return nil
}

// checkRule 编译规则；枚举和自定义规则依赖应用注册，只检查参数
func checkRule(c *validation.Compiler, rule *ruleconf.Rule, model, property string) error {
	switch rule.Type {
	case ruleconf.RuleEnumDataType, ruleconf.RuleCustom:
		_, err := validation.Describe(rule, model, property)
		return err
	default:
		_, err := c.Compile(rule, model, property)
		return err
	}
}

func ruleLabel(typ, name string) string {
	if name == "" {
		return typ
	}
	return typ + "(" + name + ")"
}
