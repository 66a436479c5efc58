package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/modelbind/pkg/binder"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
)

type orderLine struct {
	Sku string `validate:"required"`
	Qty int    `validate:"min=1"`
}

type orderForm struct {
	Customer string `validate:"required"`
	Email    string `validate:"required,email"`
	Lines    []orderLine
	Tags     map[string]string
}

type entryRow struct {
	Key       string   `json:"key" yaml:"key"`
	Attempted string   `json:"attempted,omitempty" yaml:"attempted,omitempty"`
	State     string   `json:"state" yaml:"state"`
	Errors    []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type bindReport struct {
	Result  string     `json:"result" yaml:"result"`
	Model   any        `json:"model,omitempty" yaml:"model,omitempty"`
	Valid   bool       `json:"valid" yaml:"valid"`
	Entries []entryRow `json:"entries" yaml:"entries"`
}

func newBindCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "bind <query>",
		Short: "Bind a query string into a sample order form",
		Long: `Binds the query into an order form with Customer, Email, Lines (Sku, Qty)
and Tags, then prints the model and every model state entry.`,
		Example: `  bindprobe bind 'order.Customer=Ada&order.Email=ada@example.com&order.Lines[0].Sku=A-1&order.Lines[0].Qty=2'
  bindprobe bind 'Customer=Ada&Lines[0].Qty=x' -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := queryProvider(args[0])
			if err != nil {
				return err
			}
			opts, err := binder.LoadOptions()
			if err != nil {
				return err
			}

			pb := binder.New(opts, binder.WithLogger(a.log))
			ac := pb.NewActionContext(nil)
			result, err := pb.Bind(cmd.Context(), ac, vp, metadata.ParameterFor[orderForm](name))
			if err != nil {
				return fmt.Errorf("bind: %w", err)
			}

			report := bindReport{
				Result: result.String(),
				Valid:  ac.ModelState.IsValid(),
			}
			if result.IsModelSet() {
				report.Model = result.Interface()
			}
			for _, key := range ac.ModelState.Keys() {
				entry, _ := ac.ModelState.Entry(key)
				row := entryRow{
					Key:       entry.Key,
					Attempted: entry.AttemptedValue,
					State:     entry.ValidationState.String(),
				}
				for _, me := range entry.Errors {
					row.Errors = append(row.Errors, me.Message)
				}
				report.Entries = append(report.Entries, row)
			}

			return a.print(report, func(w io.Writer) error {
				fmt.Fprintf(w, "result: %s\nvalid:  %t\n", report.Result, report.Valid)
				if report.Model != nil {
					fmt.Fprintf(w, "model:  %+v\n", report.Model)
				}
				if len(report.Entries) == 0 {
					return nil
				}
				fmt.Fprintln(w)
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tATTEMPTED\tSTATE\tERRORS")
				for _, row := range report.Entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Key, row.Attempted, row.State, strings.Join(row.Errors, "; "))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "order", "parameter name used as the model prefix")
	return cmd
}
