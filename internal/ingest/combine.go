package ingest

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/proliance-rcm/phil/internal/model"
)

// CombineStats summarizes a combine run.
type CombineStats struct {
	FilesRead int
	TotalRows int
	// RowsPerFile is keyed by source file name.
	RowsPerFile map[string]int
}

// Combine reads every export file in dir and concatenates the rows into
// one table. Rows missing a File value are stamped with the source file's
// base name so payment amounts stay derivable. maxFiles caps the number of
// files read (0 = no cap).
func Combine(dir string, reg *Registry, maxFiles int) ([]model.Row, CombineStats, error) {
	stats := CombineStats{RowsPerFile: make(map[string]int)}

	files, err := Scan(dir, reg)
	if err != nil {
		return nil, stats, err
	}
	if len(files) == 0 {
		return nil, stats, fmt.Errorf("no export files found in %s", dir)
	}
	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}

	var combined []model.Row
	for _, fi := range files {
		rows, err := parseFile(fi, reg)
		if err != nil {
			return nil, stats, fmt.Errorf("parsing %s: %w", fi.Name, err)
		}

		stem := strings.TrimSuffix(fi.Name, filepath.Ext(fi.Name))
		for i := range rows {
			if strings.TrimSpace(rows[i].File) == "" {
				rows[i].File = stem
			}
		}

		combined = append(combined, rows...)
		stats.FilesRead++
		stats.RowsPerFile[fi.Name] = len(rows)
	}

	stats.TotalRows = len(combined)
	log.Printf("[ingest] combined %d rows from %d files", stats.TotalRows, stats.FilesRead)
	return combined, stats, nil
}

func parseFile(fi FileInfo, reg *Registry) ([]model.Row, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fi.Name)), ".")
	parser := reg.Get(ext)
	if parser == nil {
		return nil, fmt.Errorf("no parser for format %q", ext)
	}

	f, err := os.Open(fi.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fi.Path, err)
	}
	defer f.Close()

	return parser.Parse(f)
}
