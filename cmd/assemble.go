/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/gmaffy/spades-runner/assembly"
	"github.com/gmaffy/spades-runner/utils"
	"github.com/spf13/cobra"
)

// assembleCmd represents the assemble command
var assembleCmd = &cobra.Command{
	Use:   "assemble <genelist>",
	Short: "Run SPAdes on each gene separately with one automatic redo pass",
	Long: `Runs SPAdes once per gene listed in the gene-list file (one gene per line,
each corresponding to a directory within the current directory). Genes
without a contigs.fasta afterwards are written to failed_spades.txt and
retried once with the largest attempted k-mer removed. Genes with fewer than
two attempted k-mers cannot be retried and are written to spades_duds.txt.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Checking dependencies ...\n\n")

		if err := utils.CheckDeps(); err != nil {
			log.Fatalf("Dependency check failed: %v", err)
		}

		fmt.Printf("Dependencies OK\n\n----------------------------------------------------------\n\n")

		cpu, cpuErr := cmd.Flags().GetInt("cpu")
		if cpuErr != nil {
			log.Fatalf("Error getting cpu flag: %v", cpuErr)
		}

		covCutoff, covErr := cmd.Flags().GetInt("cov_cutoff")
		if covErr != nil {
			log.Fatalf("Error getting cov_cutoff flag: %v", covErr)
		}

		kvals, kErr := cmd.Flags().GetStringSlice("kvals")
		if kErr != nil {
			log.Fatalf("Error getting kvals flag: %v", kErr)
		}

		unpaired, uErr := cmd.Flags().GetBool("unpaired")
		if uErr != nil {
			log.Fatalf("Error getting unpaired flag: %v", uErr)
		}

		redosOnly, rErr := cmd.Flags().GetBool("redos_only")
		if rErr != nil {
			log.Fatalf("Error getting redos_only flag: %v", rErr)
		}

		report, repErr := cmd.Flags().GetBool("report")
		if repErr != nil {
			log.Fatalf("Error getting report flag: %v", repErr)
		}

		opts := assembly.Options{
			CovCutoff: covCutoff,
			CPU:       cpu,
			Paired:    !unpaired,
			Kvals:     kvals,
		}

		if cfgFile != "" {
			fmt.Printf("Running with config file %s\n", cfgFile)
			cfg, cErr := utils.ReadConfig(cfgFile)
			if cErr != nil {
				log.Fatalf("Error reading config: %v", cErr)
			}
			opts.GeneList = cfg.GeneList
			opts.CovCutoff = cfg.CovCutoff
			opts.CPU = cfg.CPU
			opts.Paired = !cfg.Unpaired
			opts.Kvals = cfg.Kvals
		} else {
			if len(args) != 1 {
				fmt.Println("You must provide a gene-list file")
				os.Exit(1)
			}
			opts.GeneList = args[0]
		}

		if _, err := os.Stat(opts.GeneList); err != nil {
			fmt.Printf("Gene-list file: %s is not a valid file path\n", opts.GeneList)
			os.Exit(1)
		}

		if err := assembly.Run(opts, redosOnly, report); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().Int("cpu", 0, "Limit the number of CPUs. Default is to use all cores available.")
	assembleCmd.Flags().Int("cov_cutoff", 8, "Coverage cutoff for SPAdes.")
	assembleCmd.Flags().StringSlice("kvals", nil, "Values of k for SPAdes assemblies. Default is to use SPAdes auto detection based on read lengths (recommended).")
	assembleCmd.Flags().Bool("unpaired", false, "Reads are single-end rather than interleaved pairs")
	assembleCmd.Flags().Bool("redos_only", false, "Continue from previously assembled SPAdes assemblies and only conduct redos from failed_spades.txt")
	assembleCmd.Flags().Bool("report", false, "Write spades_summary.csv and spades_report.html after a fully successful run")
}
