package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/provide-io/xipres/pkg/operations"
	_ "github.com/provide-io/xipres/pkg/operations/compress"
)

func newEncodeCmd() *cobra.Command {
	var ops string

	cmd := &cobra.Command{
		Use:   "encode <source> <output>",
		Short: "Compress an asset for use as an image manifest source",
		Long: `Encode a source with an operation chain ("gzip", "bzip2", "gzip|bzip2").
Without --ops the chain is inferred from the output's extensions, the same
way build-image decodes sources.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			packed, _ := operations.FromExtension(args[1])
			if ops != "" {
				var err error
				if packed, err = operations.StringToOperations(ops); err != nil {
					return err
				}
			}
			chain := operations.UnpackOperations(packed)
			if len(chain) == 0 {
				return fmt.Errorf("no operations for %s: pass --ops or use a .gz/.bz2 output", args[1])
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			encoded, err := operations.ApplyChain(data, chain)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], encoded, 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s [%s] %d -> %d bytes\n",
				okMark, bold(args[1]), operations.OperationsToString(packed), len(data), len(encoded))
			return nil
		},
	}

	cmd.Flags().StringVar(&ops, "ops", "", "Operation chain; inferred from the output name when empty")
	return cmd
}
