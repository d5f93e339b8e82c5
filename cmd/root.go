/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spades-runner",
	Short: "Run SPAdes assemblies per gene with automatic redos",
	Long: `Runs the assembler SPAdes across many gene directories, with re-dos if any
of the k-mers are unsuccessful. Re-runs are attempted by removing the largest
k-mer and restarting SPAdes from the next-largest checkpoint. If a final
contigs.fasta file is generated, a 'spades.ok' file is saved.

1.	assemble: run SPAdes per gene with one automatic redo pass
2.	report: summarize assembled contigs per gene
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cfgFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file ")
}
