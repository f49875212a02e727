package parse

import (
	"encoding/xml"
	"math"
	"os"
	"strconv"
	"strings"
)

// FileCoverage is one row of a textual coverage table.
type FileCoverage struct {
	Path    string
	Percent float64
}

type coberturaRoot struct {
	XMLName  xml.Name `xml:"coverage"`
	LineRate string   `xml:"line-rate,attr"`
}

// ProjectCoverage reads the first readable Cobertura-style coverage
// artifact among the given paths and returns the aggregate line coverage
// rounded to the nearest integer percent. Any failure (missing file,
// malformed XML, unparsable rate) yields 0 rather than an error, so a
// missing measurement fails the coverage gate instead of passing it.
func ProjectCoverage(paths ...string) int {
	if len(paths) == 0 {
		paths = []string{"coverage.xml", "../coverage.xml"}
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if pct, ok := coverageFromXML(data); ok {
			return pct
		}
	}
	return 0
}

func coverageFromXML(data []byte) (int, bool) {
	var root coberturaRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return 0, false
	}
	rate, err := strconv.ParseFloat(root.LineRate, 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(rate * 100)), true
}

// CoverageTable parses a fixed-width "Name / Stmts / Miss / Cover /
// Missing" coverage report into per-file percentages. The TOTAL row is
// excluded; malformed rows are skipped.
func CoverageTable(output string) []FileCoverage {
	results := []FileCoverage{}
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		name := fields[0]
		if name == "Name" || name == "TOTAL" || strings.HasPrefix(name, "---") {
			continue
		}
		cover := strings.TrimSuffix(fields[3], "%")
		pct, err := strconv.ParseFloat(cover, 64)
		if err != nil {
			continue
		}
		results = append(results, FileCoverage{Path: name, Percent: pct})
	}
	return results
}
