package main

import (
	"fmt"

	"github.com/biofx/fxindex"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Build (or refresh) the .fxi side index for a FASTA/FASTQ file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		printLogo()
		path := args[0]
		eng, err := fxindex.Open(path)
		if err != nil {
			fail(err)
		}
		defer eng.Close()

		n, err := eng.Len()
		if err != nil {
			fail(err)
		}
		fmt.Fprintf(stdout, "%s  %s records, kind=%s, type=%s\n",
			cyan(fxindex.IndexPath(path)), bold(fmt.Sprint(n)), eng.Kind(), eng.SeqType())
	},
}
