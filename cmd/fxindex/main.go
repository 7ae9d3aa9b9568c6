// Command fxindex is a thin CLI over the fxindex library: build and query
// a persistent random-access index over FASTA/FASTQ files, gzip included.
package main

import (
	"fmt"
	"os"

	"github.com/biofx/fxindex"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "fxindex",
	Short:   "Indexed random access over FASTA/FASTQ files",
	Version: fxindex.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() == "fxindex" || cmd.Name() == "help" {
			return
		}
	},
}

func fail(err error) {
	fmt.Fprintln(stderr, red("Error: ")+err.Error())
	os.Exit(1)
}

func main() {
	rootCmd.AddCommand(indexCmd, statsCmd, extractCmd, faidxCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
