package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"katydid-common-validation/pkg/ruleconf"
)

func newParseCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "parse <raw>...",
		Short:   "Split rule argument strings into model, property, parameter and value",
		Example: `  reve parse company.Name.max=50 "bu;Desc;pattern:^[a-z]+$"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := checkFormat(format)
			if err != nil {
				return err
			}

			parts := make([]ruleconf.ArgumentParts, 0, len(args))
			for _, raw := range args {
				parts = append(parts, ruleconf.ParseArgument(raw))
			}
			if format == formatJSON {
				return renderJSON(cmd.OutOrStdout(), parts)
			}

			rows := make([]table.Row, 0, len(parts))
			for i, p := range parts {
				rows = append(rows, table.Row{args[i], p.Model, p.Property, p.Parameter, p.Value})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Raw", "Model", "Property", "Parameter", "Value"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json")
	return cmd
}
