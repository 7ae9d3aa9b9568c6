package main

import (
	"fmt"
	"os"

	"github.com/biofx/fxindex"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

var statsPlotPath string

func init() {
	statsCmd.Flags().StringVar(&statsPlotPath, "plot", "", "write a length-distribution SVG to this path")
}

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Print aggregate statistics for a FASTA/FASTQ file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		eng, err := fxindex.Open(path)
		if err != nil {
			fail(err)
		}
		defer eng.Close()

		s, err := eng.Stats()
		if err != nil {
			fail(err)
		}
		n, _ := eng.Len()

		headerFmt := yellow
		columnFmt := bold
		tbl := table.New("metric", "value")
		tbl.WithHeaderFormatter(func(format string, vals ...interface{}) string {
			return headerFmt(fmt.Sprintf(format, vals...))
		})
		tbl.WithFirstColumnFormatter(func(format string, vals ...interface{}) string {
			return columnFmt(fmt.Sprintf(format, vals...))
		})

		tbl.AddRow("records", n)
		tbl.AddRow("size", s.Size())
		tbl.AddRow("mean_length", fmt.Sprintf("%.1f", s.Mean()))
		tbl.AddRow("median_length", fmt.Sprintf("%.1f", s.Median()))

		if eng.Kind() == fxindex.KindFASTAFile {
			if gc, skew, err := s.GC(); err == nil {
				tbl.AddRow("gc_content", fmt.Sprintf("%.2f%%", gc))
				tbl.AddRow("gc_skew", fmt.Sprintf("%.4f", skew))
			}
		}
		if nx, lx, err := s.NL(50); err == nil {
			tbl.AddRow("N50", nx)
			tbl.AddRow("L50", lx)
		}
		if eng.Kind() == fxindex.KindFASTQFile {
			if phred, err := s.Phred(); err == nil {
				tbl.AddRow("phred_offset", phred)
			}
		}

		tbl.Print()

		if statsPlotPath != "" {
			svg, err := s.LengthHistogramSVG()
			if err != nil {
				fail(err)
			}
			if err := os.WriteFile(statsPlotPath, []byte(svg), 0o644); err != nil {
				fail(err)
			}
			fmt.Fprintln(stdout, cyan(fmt.Sprintf("wrote %s", statsPlotPath)))
		}
	},
}
