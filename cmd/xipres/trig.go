package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provide-io/xipres/pkg/trig"
)

func newTrigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trig",
		Short: "Measure the trig approximations against math",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := trig.Measure()
			bound := float64(trig.SinCosErrorBound)

			out := cmd.OutOrStdout()
			failed := false
			row := func(name string, got, limit float64, unit string) {
				mark := okMark
				if got > limit {
					mark, failed = failMark, true
				}
				fmt.Fprintf(out, "%s %-11s max error %.6f %s (bound %.6f)\n", mark, name, got, unit, limit)
			}

			row("sin", e.Sin, bound, "ulp")
			row("cos", e.Cos, bound, "ulp")
			row("finesine", e.FineSine, bound, "ulp")
			row("finetangent", e.FineTangent, bound, "ulp")
			fmt.Fprintf(out, "  %-11s max error %.6f ulp\n", "tan", e.Tan)
			row("atan", e.ATan, trig.ATanErrorBound, "rad")

			if failed {
				return fmt.Errorf("approximation error above bound")
			}
			return nil
		},
	}
}
