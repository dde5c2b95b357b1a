package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

var (
	exportOut      string
	exportCompress bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the bulk textual export of all stored records",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		defer session.Close()

		var w io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if exportCompress {
			zw, err := zstd.NewWriter(w)
			if err != nil {
				return fmt.Errorf("initializing compression: %w", err)
			}
			defer zw.Close()
			w = zw
		}

		return session.Export(w)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "",
		"output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false,
		"zstd-compress the export")
	rootCmd.AddCommand(exportCmd)
}
