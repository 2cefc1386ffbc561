package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/provide-io/xipres/pkg/checksum"
	"github.com/provide-io/xipres/pkg/config"
	"github.com/provide-io/xipres/pkg/resource"
)

func newMountCmd() *cobra.Command {
	var (
		image     string
		label     string
		name      string
		length    uint32
		headBytes int
		algo      string
	)

	cmd := &cobra.Command{
		Use:   "mount",
		Short: "Mount the asset partition and read the logical file",
		Long: `Map the asset partition of a flash image, check its signature, and read the
first bytes of the logical file through the read-only store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if headBytes < 0 {
				return fmt.Errorf("--bytes must not be negative")
			}
			algorithm, err := checksum.ParseAlgorithm(algo)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd, func(cmd *cobra.Command, cfg *config.Config) {
				flags := cmd.Flags()
				if flags.Changed("image") {
					cfg.Image = image
				}
				if flags.Changed("label") {
					cfg.Partition.Label = label
				}
				if flags.Changed("name") {
					cfg.LogicalName = name
				}
				if flags.Changed("length") {
					cfg.Length = length
				}
			})
			if err != nil {
				return err
			}
			if cfg.Image == "" {
				return fmt.Errorf("no flash image: pass --image or set %s", config.EnvImage)
			}

			logger := newLogger("xipres-mount", cfg.LogLevel)

			res, err := resource.InitImage(cfg, logger)
			if err != nil {
				return err
			}
			defer res.Close()

			f, err := res.Open(cfg.LogicalName, "rb")
			if err != nil {
				return err
			}
			defer f.Close()

			size, err := f.Seek(0, io.SeekEnd)
			if err != nil {
				return err
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return err
			}

			head := make([]byte, headBytes)
			n, err := f.ReadElements(head, 1, headBytes)
			if err != nil && err != io.EOF {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s mounted from %s (%d bytes)\n", okMark, bold(cfg.LogicalName), cfg.Image, size)
			fmt.Fprint(out, hex.Dump(head[:n]))
			fmt.Fprintf(out, "%s %s\n", okMark, res.Checksum(algorithm))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&image, "image", "i", "", "Flash image path")
	flags.StringVar(&label, "label", "", "Asset partition label")
	flags.StringVar(&name, "name", config.DefaultLogicalName, "Logical file name")
	flags.Uint32Var(&length, "length", 0, "Mapped length; 0 maps the whole partition")
	flags.IntVarP(&headBytes, "bytes", "n", 16, "Bytes to read from the start of the file")
	flags.StringVar(&algo, "checksum", "sha256", "Checksum algorithm to report")
	return cmd
}
