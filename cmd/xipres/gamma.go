package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/provide-io/xipres/pkg/gamma"
)

func newGammaCmd() *cobra.Command {
	var step int

	cmd := &cobra.Command{
		Use:   "gamma",
		Short: "Print the calculated gamma curves",
		RunE: func(cmd *cobra.Command, args []string) error {
			if step < 1 || step > 255 {
				return fmt.Errorf("--step must be in [1, 255]")
			}

			var ramp []byte
			for v := 0; v < 256; v += step {
				ramp = append(ramp, byte(v))
			}

			out := cmd.OutOrStdout()
			for level := 0; level < gamma.Levels; level++ {
				curve := append([]byte(nil), ramp...)
				gamma.Apply(level, curve)

				var row strings.Builder
				for _, v := range curve {
					fmt.Fprintf(&row, " %3d", v)
				}
				fmt.Fprintf(out, "%d (x^%.3f):%s\n", level, gamma.Exponent(level), row.String())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&step, "step", 32, "Input step between printed values")
	return cmd
}
