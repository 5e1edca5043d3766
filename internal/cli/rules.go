package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"katydid-common-validation/pkg/validation"
)

type rulesOptions struct {
	alias  string
	format string
}

func newRulesCommand() *cobra.Command {
	opts := &rulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [model]",
		Short: "List configured validation rules",
		Example: `  # 所有模型的规则
  reve rules

  # 某个模型（+ 别名）的规则
  reve rules businessunit --alias bu

  # JSON 输出
  reve rules company --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var model string
			if len(args) > 0 {
				model = args[0]
			}
			return runRules(cmd, model, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.alias, "alias", "a", "", "model alias")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, json")
	return cmd
}

func runRules(cmd *cobra.Command, model string, opts *rulesOptions) error {
	format, err := checkFormat(opts.format)
	if err != nil {
		return err
	}
	e, err := envFrom(cmd)
	if err != nil {
		return err
	}
	repo, err := e.repo(cmd.Context())
	if err != nil {
		return err
	}

	var rules []validation.ValidationRule
	if model == "" {
		rules, err = repo.AllRules()
	} else {
		m := repo.Lookup(model, opts.alias)
		if m == nil {
			if opts.alias != "" {
				return fmt.Errorf("model %q with alias %q not found", model, opts.alias)
			}
			return fmt.Errorf("model %q not found", model)
		}
		rules, err = validation.DescribeModel(m)
	}
	if err != nil {
		return err
	}

	if format == formatJSON {
		return renderJSON(cmd.OutOrStdout(), rules)
	}

	rows := make([]table.Row, 0, len(rules))
	for _, r := range rules {
		b := r.Base()
		rows = append(rows, table.Row{b.Model, b.Property, b.Type, b.TechnicalDescription, b.FriendlyDescription})
	}
	renderTable(cmd.OutOrStdout(), table.Row{"Model", "Property", "Type", "Technical", "Friendly"}, rows)
	return nil
}
