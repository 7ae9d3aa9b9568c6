package main

import (
	"github.com/biofx/fxindex"
	"github.com/spf13/cobra"
)

var faidxCmd = &cobra.Command{
	Use:   "faidx <file>",
	Short: "Export a samtools-compatible .fai index for a flat FASTA file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		eng, err := fxindex.Open(path)
		if err != nil {
			fail(err)
		}
		defer eng.Close()

		if err := eng.ExportFAI(stdout); err != nil {
			fail(err)
		}
	},
}
