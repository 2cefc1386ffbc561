package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provide-io/xipres/internal/manifest"
	"github.com/provide-io/xipres/pkg/region"
	"github.com/provide-io/xipres/pkg/resource"
)

func newPlanCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Place static declarations into memory regions",
		Long: `Run the placement policy over a placement manifest (--manifest), or over the
engine's annotated tables on the ESP32 catalog. Any region overflow fails the
command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger("xipres-plan", "")

			var (
				policy *region.Policy
				decls  []region.Declaration
				err    error
			)
			if manifestPath != "" {
				var m region.Manifest
				if err := manifest.Load(manifestPath, &m); err != nil {
					return err
				}
				if policy, err = m.Policy(logger); err != nil {
					return err
				}
				decls = m.DeclarationList()
			} else {
				if policy, err = region.NewPolicyWithLogger(region.ESP32(), logger); err != nil {
					return err
				}
				decls = resource.EngineDeclarations()
			}

			out := cmd.OutOrStdout()

			layout, err := policy.Plan(decls)
			var capErr *region.CapacityError
			if errors.As(err, &capErr) {
				for _, o := range capErr.Overflows {
					fmt.Fprintf(out, "%s %s: %d of %d bytes\n", failMark, o.Region, o.Required, o.Capacity)
				}
			}
			if err != nil {
				return err
			}

			if err := layout.WriteReport(out); err != nil {
				return err
			}
			for _, a := range layout.Demotions() {
				fmt.Fprintf(out, "%s %s demoted from %s to %s\n", warnMark, a.Name, a.Preferred, a.Region)
			}
			fmt.Fprintf(out, "%s %d declarations placed\n", okMark, len(layout.Assignments()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Placement manifest (.toml/.yaml)")
	return cmd
}
