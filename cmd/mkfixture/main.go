// mkfixture cuts a small representative case sheet out of a full report.
// Rows are kept in blocks that start at a row with its own school and date,
// so forward-fill and wrapped names still resolve inside the fixture.
// Usage: go run ./cmd/mkfixture --in testdata/cases.xlsx --out testdata/cases-small.xlsx --blocks 40
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/schoolcases/internal/config"
	"github.com/gyeh/schoolcases/internal/grid"
	"github.com/gyeh/schoolcases/internal/normalize"
)

func main() {
	in := flag.String("in", "testdata/cases.xlsx", "input workbook")
	out := flag.String("out", "testdata/cases-small.xlsx", "output workbook")
	sheet := flag.String("sheet", "", "worksheet name (default first)")
	maxBlocks := flag.Int("blocks", 40, "max row blocks to output")
	checkOnly := flag.Bool("check", false, "only print stats, don't write")
	flag.Parse()

	g, err := grid.Open(*in, *sheet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	cols := config.DefaultLayout().Columns

	has := func(row, col int) bool { return g.Cell(row, col) != nil }
	broken := func(row, col int) bool {
		v := g.Cell(row, col)
		return v != nil && normalize.HasLineBreak(*v)
	}

	// Pass 1: split the sheet into blocks and tag each block's traits.
	type block struct {
		first, last int
		traits      map[string]bool
	}
	var blocks []*block
	for row := 1; row <= g.LastRow(); row++ {
		if len(blocks) == 0 || (has(row, cols.School) && has(row, cols.DateReported)) {
			blocks = append(blocks, &block{first: row, last: row, traits: map[string]bool{}})
		}
		b := blocks[len(blocks)-1]
		b.last = row

		switch {
		case broken(row, cols.Marker) && broken(row, cols.Count):
			b.traits["split"] = true
		case has(row, cols.School) && !has(row, cols.DateReported) && !has(row, cols.Count):
			b.traits["wrap"] = true
		case !has(row, cols.DateReported) && has(row, cols.Count):
			b.traits["carry"] = true
		}
		if v := g.Cell(row, cols.School); v != nil {
			if _, ok := normalize.StripSpillover(normalize.CleanName(*v)); ok {
				b.traits["spillover"] = true
			}
			if normalize.HasLineBreak(*v) {
				b.traits["linebreak"] = true
			}
		}
	}

	traitNames := []string{"split", "wrap", "carry", "spillover", "linebreak"}
	counts := make(map[string]int)
	for _, b := range blocks {
		for t := range b.traits {
			counts[t]++
		}
	}
	fmt.Printf("Scanned %d rows in %d blocks\n", g.LastRow(), len(blocks))
	for _, t := range traitNames {
		fmt.Printf("  %-10s %d\n", t, counts[t])
	}
	if *checkOnly {
		return
	}

	// Pass 2: take blocks with each trait first, then fill with plain ones.
	picked := make(map[*block]bool)
	var selected []*block
	take := func(b *block) {
		if !picked[b] && len(selected) < *maxBlocks {
			picked[b] = true
			selected = append(selected, b)
		}
	}
	perTrait := *maxBlocks / (len(traitNames) + 1)
	for _, t := range traitNames {
		n := 0
		for _, b := range blocks {
			if n >= perTrait {
				break
			}
			if b.traits[t] && !picked[b] {
				take(b)
				n++
			}
		}
	}
	for _, b := range blocks {
		take(b)
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].first < selected[j].first })

	// Write output
	f := excelize.NewFile()
	defer f.Close()
	const outSheet = "Sheet1"
	width := max(cols.Region, cols.School, cols.DateReported, cols.LastDateOnCampus, cols.Marker, cols.Count)
	outRow := 0
	for _, b := range selected {
		for row := b.first; row <= b.last; row++ {
			outRow++
			values := make([]any, width)
			for col := 1; col <= width; col++ {
				if v := g.Cell(row, col); v != nil {
					values[col-1] = *v
				}
			}
			cell, err := excelize.CoordinatesToCellName(1, outRow)
			if err != nil {
				fmt.Fprintf(os.Stderr, "cell name: %v\n", err)
				os.Exit(1)
			}
			if err := f.SetSheetRow(outSheet, cell, &values); err != nil {
				fmt.Fprintf(os.Stderr, "write row %d: %v\n", outRow, err)
				os.Exit(1)
			}
		}
	}
	if err := f.SaveAs(*out); err != nil {
		fmt.Fprintf(os.Stderr, "save output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d blocks (%d rows) to %s\n", len(selected), outRow, *out)
}
