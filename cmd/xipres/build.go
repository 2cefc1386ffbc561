package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provide-io/xipres/pkg/image"
)

func newBuildImageCmd() *cobra.Command {
	var (
		manifestPath string
		wadPath      string
		outputPath   string
	)

	cmd := &cobra.Command{
		Use:   "build-image",
		Short: "Lay out a flash image with the asset partition",
		Long: `Build a flash image from an image manifest (--manifest), or from the stock
partition layout with the given WAD (--wad). Compressed sources (.gz, .bz2) are
decoded before they are written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (manifestPath == "") == (wadPath == "") {
				return fmt.Errorf("exactly one of --manifest or --wad is required")
			}

			logger := newLogger("xipres-build", "")

			var m *image.Manifest
			if manifestPath != "" {
				var err error
				if m, err = image.LoadManifest(manifestPath); err != nil {
					return err
				}
			} else {
				m = image.DefaultManifest(wadPath)
			}

			img, err := image.Build(m, logger)
			if err != nil {
				return err
			}
			if err := img.WriteFile(outputPath, logger); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%d bytes)\n", okMark, bold(outputPath), len(img.Data))
			for _, e := range img.Table.Entries {
				fmt.Fprintf(out, "  %-16s 0x%06x %8d\n", e.Label, e.Offset, e.Size)
			}
			for _, c := range img.Contents {
				fmt.Fprintf(out, "  %s %s <- %s [%s] %d bytes %s\n", okMark, c.Label, c.Source, c.Operations, c.Size, c.Checksum)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Image manifest (.toml/.yaml)")
	cmd.Flags().StringVar(&wadPath, "wad", "", "WAD for the stock layout")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "flash.bin", "Output image path")
	return cmd
}
