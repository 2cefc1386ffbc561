package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/provide-io/xipres/pkg/checksum"
	"github.com/provide-io/xipres/pkg/flash"
	"github.com/provide-io/xipres/pkg/partition"
	"github.com/provide-io/xipres/pkg/xipfs"
)

func newInspectCmd() *cobra.Command {
	var tableOffset uint32

	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Print the partition table of a flash image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger("xipres-inspect", "")

			dev, err := flash.OpenImage(args[0],
				flash.WithTableOffset(tableOffset),
				flash.WithLogger(logger))
			if err != nil {
				return err
			}
			defer dev.Close()

			table := dev.Partitions()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (table at 0x%x, md5 %v)\n", bold(args[0]), tableOffset, table.Checksummed)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tTYPE\tSUBTYPE\tOFFSET\tSIZE\tFLAGS")
			for _, e := range table.Entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t0x%06x\t%d\t%s\n",
					e.Label, e.Type, partition.SubTypeName(e.Type, e.SubType), e.Offset, e.Size, flagString(e.Flags))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			for _, e := range table.Entries {
				if e.Type == partition.TypeAsset {
					inspectAsset(cmd, dev, e)
				}
			}
			return nil
		},
	}

	cmd.Flags().Uint32Var(&tableOffset, "table-offset", partition.DefaultTableOffset, "Flash offset of the partition table")
	return cmd
}

func inspectAsset(cmd *cobra.Command, dev flash.Device, e partition.Entry) {
	out := cmd.OutOrStdout()

	m, err := dev.Map(e, 0, 0)
	if err != nil {
		fmt.Fprintf(out, "%s %s: %v\n", failMark, e.Label, err)
		return
	}
	defer m.Close()

	if _, err := xipfs.NewBlob(m.Data, ""); err != nil {
		fmt.Fprintf(out, "%s %s: %v\n", warnMark, e.Label, err)
		return
	}
	fmt.Fprintf(out, "%s %s: %s, %s\n", okMark, e.Label, xipfs.DefaultMagic, checksum.Calculate(m.Data, checksum.Adler32))
}

func flagString(flags uint32) string {
	s := ""
	if flags&partition.FlagReadOnly != 0 {
		s += "ro "
	}
	if flags&partition.FlagEncrypted != 0 {
		s += "enc "
	}
	if s == "" {
		return "-"
	}
	return s[:len(s)-1]
}
