package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-validation/pkg/ruleconf"
	"katydid-common-validation/pkg/ruleconf/source"
)

func testModels() *ruleconf.ValidationModelConfig {
	return &ruleconf.ValidationModelConfig{
		Models: []*ruleconf.Model{
			ruleconf.NewModel("company", "",
				ruleconf.NewProperty("Id", ruleconf.NewRule(ruleconf.RuleRequired, "")),
				ruleconf.NewProperty("Name",
					ruleconf.NewRule(ruleconf.RuleRequired, ""),
					ruleconf.NewRule(ruleconf.RuleMaxLength, "")),
			),
			ruleconf.NewModel("businessunit", "bu",
				ruleconf.NewProperty("Desc", ruleconf.NewRule(ruleconf.RuleRegex, "DescRule")),
			),
		},
	}
}

func testArguments(raws ...string) *ruleconf.RuleArgumentConfig {
	cfg := &ruleconf.RuleArgumentConfig{}
	for _, raw := range raws {
		parts := ruleconf.ParseArgument(raw)
		switch parts.Parameter {
		case "max":
			cfg.RuleDefinitions = append(cfg.RuleDefinitions, ruleconf.NewRuleArgument(ruleconf.RuleMaxLength, "", raw))
		case "pattern":
			cfg.RuleDefinitions = append(cfg.RuleDefinitions, ruleconf.NewRuleArgument(ruleconf.RuleRegex, "DescRule", raw))
		}
	}
	return cfg
}

func writeJSON(t *testing.T, dir, name string, in any) string {
	t.Helper()
	data, err := source.Encode("json", in)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// run 执行命令，返回标准输出
func run(t *testing.T, models *ruleconf.ValidationModelConfig, args *ruleconf.RuleArgumentConfig, cmdArgs ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	full := append([]string{
		"--models", writeJSON(t, dir, "validations.json", models),
		"--values", writeJSON(t, dir, "rules.json", args),
		"--log-level", "error",
	}, cmdArgs...)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(full)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRulesCommand(t *testing.T) {
	args := testArguments("company.Name.max=50", "bu.Desc.pattern=^[a-z]*$")

	t.Run("所有规则", func(t *testing.T) {
		out, err := run(t, testModels(), args, "rules", "--format", "json")
		require.NoError(t, err)
		var rules []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &rules))
		assert.Len(t, rules, 4)
	})

	t.Run("模型规则表格", func(t *testing.T) {
		out, err := run(t, testModels(), args, "rules", "company")
		require.NoError(t, err)
		assert.Contains(t, out, "MaxLength")
		assert.Contains(t, out, "company.Name must have a length no greater than 50.")
		assert.NotContains(t, out, "Regex")
	})

	t.Run("别名", func(t *testing.T) {
		out, err := run(t, testModels(), args, "rules", "businessunit", "--alias", "bu", "-f", "json")
		require.NoError(t, err)
		var rules []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &rules))
		require.Len(t, rules, 1)
		assert.Equal(t, "Regex", rules[0]["type"])
		assert.Equal(t, "^[a-z]*$", rules[0]["pattern"])
	})

	t.Run("未知模型", func(t *testing.T) {
		_, err := run(t, testModels(), args, "rules", "order")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("未知格式", func(t *testing.T) {
		_, err := run(t, testModels(), args, "rules", "--format", "xml")
		assert.ErrorContains(t, err, "unknown output format")
	})
}

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name     string
		models   *ruleconf.ValidationModelConfig
		args     *ruleconf.RuleArgumentConfig
		wantErr  bool
		wantText string
	}{
		{
			name:     "全部通过",
			models:   testModels(),
			args:     testArguments("company.Name.max=50", "bu.Desc.pattern=^[a-z]*$"),
			wantText: "2 models, 4 rules, 0 failed",
		},
		{
			name:     "缺少参数",
			models:   testModels(),
			args:     testArguments("bu.Desc.pattern=^[a-z]*$"),
			wantErr:  true,
			wantText: "2 models, 4 rules, 1 failed",
		},
		{
			name:     "参数无法转换",
			models:   testModels(),
			args:     testArguments("company.Name.max=many", "bu.Desc.pattern=^[a-z]*$"),
			wantErr:  true,
			wantText: "MaxLength",
		},
		{
			name: "查找键冲突",
			models: &ruleconf.ValidationModelConfig{Models: []*ruleconf.Model{
				ruleconf.NewModel("company", ""),
				ruleconf.NewModel("Company", ""),
			}},
			args:    testArguments(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.models, tt.args, "check")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrCheckFailed))
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out, tt.wantText)
		})
	}
}

func TestCheckCommand_JSON(t *testing.T) {
	out, err := run(t, testModels(), testArguments("bu.Desc.pattern=^[a-z]*$"), "check", "-f", "json")
	require.Error(t, err)

	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Models)
	assert.Equal(t, 4, report.Rules)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "company", report.Failures[0].Model)
	assert.Equal(t, "Name", report.Failures[0].Property)
	assert.Equal(t, "MaxLength", report.Failures[0].Rule)
}

func TestParseCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--log-level", "error", "parse", "-f", "json", "company.Name.max=50", "bu;Desc;pattern:^a:b$", "noseparator"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	var parts []ruleconf.ArgumentParts
	require.NoError(t, json.Unmarshal(out.Bytes(), &parts))
	require.Len(t, parts, 3)
	assert.Equal(t, ruleconf.ArgumentParts{FullName: "company.Name.max", Model: "company", Property: "Name", Parameter: "max", Value: "50"}, parts[0])
	assert.Equal(t, "pattern", parts[1].Parameter)
	assert.Equal(t, "^a:b$", parts[1].Value)
	assert.Equal(t, "noseparator", parts[2].Model)
	assert.Empty(t, parts[2].Value)
}
