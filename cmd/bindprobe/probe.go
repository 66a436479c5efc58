package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type keyRow struct {
	Name string `json:"name" yaml:"name"`
	Key  string `json:"key" yaml:"key"`
}

func newKeysCmd(a *app) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "keys <query>",
		Short: "List the keys one level below a prefix",
		Example: `  bindprobe keys 'order.Customer=Ada&order.Lines[0].Sku=A-1' --prefix order
  bindprobe keys 'order.Lines[0].Sku=A-1&order.Lines[1].Sku=B-2' -p order.Lines -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := queryProvider(args[0])
			if err != nil {
				return err
			}

			keys := vp.GetKeysFromPrefix(prefix)
			rows := make([]keyRow, 0, len(keys))
			for _, name := range slices.Sorted(maps.Keys(keys)) {
				rows = append(rows, keyRow{Name: name, Key: keys[name]})
			}

			return a.print(rows, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tKEY")
				for _, row := range rows {
					fmt.Fprintf(tw, "%s\t%s\n", row.Name, row.Key)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "model name prefix")
	return cmd
}

type containsReport struct {
	Prefix   string `json:"prefix" yaml:"prefix"`
	Contains bool   `json:"contains" yaml:"contains"`
}

func newContainsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "contains <query> <prefix>",
		Short:   "Report whether any key equals or starts with a prefix",
		Example: `  bindprobe contains 'order.Lines[0].Sku=A-1' 'order.Lines'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := queryProvider(args[0])
			if err != nil {
				return err
			}

			report := containsReport{Prefix: args[1], Contains: vp.ContainsPrefix(args[1])}
			return a.print(report, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, report.Contains)
				return err
			})
		},
	}
}
