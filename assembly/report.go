package assembly

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"
)

// GeneStats summarizes the flattened contigs file of one gene.
type GeneStats struct {
	Gene    string
	Contigs int
	TotalBp int
	Longest int
	N50     int
	MeanBp  float64
}

// ContigStats parses <gene>/<gene>_contigs.fasta and computes its summary
// statistics.
func ContigStats(gene string) (GeneStats, error) {
	f, err := os.Open(flatContigsPath(gene))
	if err != nil {
		return GeneStats{}, err
	}
	defer f.Close()

	r := fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA))
	sc := seqio.NewScanner(r)

	var lengths []float64
	total := 0
	longest := 0
	for sc.Next() {
		seq := sc.Seq().(*linear.Seq)
		n := len(seq.Seq)
		lengths = append(lengths, float64(n))
		total += n
		if n > longest {
			longest = n
		}
	}
	if err := sc.Error(); err != nil {
		return GeneStats{}, err
	}
	if len(lengths) == 0 {
		return GeneStats{Gene: gene}, nil
	}

	return GeneStats{
		Gene:    gene,
		Contigs: len(lengths),
		TotalBp: total,
		Longest: longest,
		N50:     n50(lengths, total),
		MeanBp:  stat.Mean(lengths, nil),
	}, nil
}

// n50 is the length of the shortest contig in the minimal set of longest
// contigs covering at least half of the assembly.
func n50(lengths []float64, total int) int {
	sorted := append([]float64(nil), lengths...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	cum := 0
	for _, l := range sorted {
		cum += int(l)
		if 2*cum >= total {
			return int(l)
		}
	}
	return 0
}

// WriteReport summarizes every gene with a flattened contigs file into a CSV
// table and an HTML chart page. Genes without contigs are skipped with a
// warning.
func WriteReport(genes []string, csvPath string, htmlPath string) error {
	fmt.Printf("Summarizing assemblies for %d genes ...\n", len(genes))

	var allStats []GeneStats
	for _, gene := range genes {
		if _, err := os.Stat(flatContigsPath(gene)); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: no contigs file for %s, skipping in report\n", gene)
			continue
		}
		gs, err := ContigStats(gene)
		if err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: reading contigs for %s: %v\n", gene, err)
			continue
		}
		allStats = append(allStats, gs)
	}

	if len(allStats) == 0 {
		return fmt.Errorf("no assembled genes to report")
	}

	records := [][]string{{"GENE", "CONTIGS", "TOTAL_BP", "LONGEST", "N50", "MEAN_BP"}}
	for _, gs := range allStats {
		records = append(records, []string{
			gs.Gene,
			strconv.Itoa(gs.Contigs),
			strconv.Itoa(gs.TotalBp),
			strconv.Itoa(gs.Longest),
			strconv.Itoa(gs.N50),
			fmt.Sprintf("%.1f", gs.MeanBp),
		})
	}

	df := dataframe.LoadRecords(records)
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	defer csvFile.Close()
	if err := df.WriteCSV(csvFile); err != nil {
		return err
	}
	fmt.Println("Assembly summary saved at: ", csvPath)

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		createBarChart(allStats, "Contigs per gene", "Contigs", func(gs GeneStats) int { return gs.Contigs }),
		createBarChart(allStats, "N50 per gene", "N50 (bp)", func(gs GeneStats) int { return gs.N50 }),
	)

	htmlFile, err := os.Create(htmlPath)
	if err != nil {
		return err
	}
	defer htmlFile.Close()
	return page.Render(htmlFile)
}

func createBarChart(allStats []GeneStats, title string, ylabel string, value func(GeneStats) int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithYAxisOpts(opts.YAxis{Name: ylabel}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Gene"}),
	)

	var x []string
	var data []opts.BarData
	for _, gs := range allStats {
		x = append(x, gs.Gene)
		data = append(data, opts.BarData{Value: value(gs)})
	}
	bar.SetXAxis(x).AddSeries(ylabel, data)
	return bar
}
