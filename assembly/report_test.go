package assembly

import (
	"os"
	"strings"
	"testing"
)

func writeFlatContigs(t *testing.T, gene string, lengths []int) {
	t.Helper()
	if err := os.MkdirAll(gene, 0755); err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for i, n := range lengths {
		b.WriteString(">c")
		b.WriteString(strings.Repeat("I", i+1))
		b.WriteString("\n")
		b.WriteString(strings.Repeat("A", n))
		b.WriteString("\n")
	}
	if err := os.WriteFile(flatContigsPath(gene), []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestContigStats(t *testing.T) {
	chdir(t, t.TempDir())

	writeFlatContigs(t, "g1", []int{30, 20, 10})

	gs, err := ContigStats("g1")
	if err != nil {
		t.Fatalf("ContigStats: %v", err)
	}
	if gs.Contigs != 3 {
		t.Errorf("Contigs = %d, want 3", gs.Contigs)
	}
	if gs.TotalBp != 60 {
		t.Errorf("TotalBp = %d, want 60", gs.TotalBp)
	}
	if gs.Longest != 30 {
		t.Errorf("Longest = %d, want 30", gs.Longest)
	}
	if gs.N50 != 30 {
		t.Errorf("N50 = %d, want 30", gs.N50)
	}
	if gs.MeanBp != 20.0 {
		t.Errorf("MeanBp = %f, want 20.0", gs.MeanBp)
	}
}

func TestN50(t *testing.T) {
	if got := n50([]float64{10, 20, 30}, 60); got != 30 {
		t.Errorf("n50 = %d, want 30", got)
	}
	if got := n50([]float64{100, 1, 1}, 102); got != 100 {
		t.Errorf("n50 = %d, want 100", got)
	}
	if got := n50([]float64{5, 5, 5, 5}, 20); got != 5 {
		t.Errorf("n50 = %d, want 5", got)
	}
}

func TestWriteReport(t *testing.T) {
	chdir(t, t.TempDir())

	writeFlatContigs(t, "g1", []int{40, 10})
	// g2 has no contigs file and should be skipped.

	if err := WriteReport([]string{"g1", "g2"}, "summary.csv", "report.html"); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	csvContent, err := os.ReadFile("summary.csv")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(csvContent), "GENE") {
		t.Errorf("summary missing header: %q", csvContent)
	}
	if !strings.Contains(string(csvContent), "g1") {
		t.Errorf("summary missing gene row: %q", csvContent)
	}
	if strings.Contains(string(csvContent), "g2") {
		t.Errorf("summary should not contain skipped gene: %q", csvContent)
	}

	if _, err := os.Stat("report.html"); err != nil {
		t.Errorf("HTML report not written: %v", err)
	}
}

func TestWriteReportNothingAssembled(t *testing.T) {
	chdir(t, t.TempDir())

	if err := WriteReport([]string{"g1"}, "summary.csv", "report.html"); err == nil {
		t.Error("expected error when no gene has contigs")
	}
}
