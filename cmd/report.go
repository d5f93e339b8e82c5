/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log"

	"github.com/gmaffy/spades-runner/assembly"
	"github.com/gmaffy/spades-runner/utils"
	"github.com/spf13/cobra"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <genelist>",
	Short: "Summarize assembled contigs per gene",
	Long: `Reads each gene's flattened <gene>_contigs.fasta and writes a per-gene
summary table (contig count, total bases, longest contig, N50, mean length)
plus an HTML chart page. Genes without a contigs file are skipped.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		csvPath, csvErr := cmd.Flags().GetString("csv")
		if csvErr != nil {
			log.Fatalf("Error getting csv flag: %v", csvErr)
		}

		htmlPath, htmlErr := cmd.Flags().GetString("html")
		if htmlErr != nil {
			log.Fatalf("Error getting html flag: %v", htmlErr)
		}

		genes, gErr := utils.ReadLines(args[0])
		if gErr != nil {
			log.Fatalf("Error reading gene-list file: %v", gErr)
		}

		if err := assembly.WriteReport(genes, csvPath, htmlPath); err != nil {
			log.Fatalf("Error writing report: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("csv", assembly.SummaryCsvFile, "Output path for the summary table")
	reportCmd.Flags().String("html", assembly.ReportHTMLFile, "Output path for the HTML chart page")
}
