package moderation

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/canvaswizards/canvas-moderator/internal/report"
)

// anonymizeGraders shuffles the row order, assigns every distinct grader a
// sequential integer id, persists the grader/id map to mapPath, and replaces
// the grader column with the id. The shuffle is intentionally unseeded:
// anonymized runs are not meant to be reproducible. Safe to apply to an
// already-anonymized column; the integer ids are just re-mapped.
func anonymizeGraders(table *report.Table, mapPath string) error {
	rand.Shuffle(len(table.Rows), func(i, j int) {
		table.Rows[i], table.Rows[j] = table.Rows[j], table.Rows[i]
	})

	ids := make(map[string]int)
	var order []string
	for _, row := range table.Rows {
		grader := row[report.ColGrader]
		if _, ok := ids[grader]; !ok {
			ids[grader] = len(ids)
			order = append(order, grader)
		}
	}

	f, err := os.Create(mapPath)
	if err != nil {
		return fmt.Errorf("failed to create grader map %s: %w", mapPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"grader", "hash"}); err != nil {
		return fmt.Errorf("failed to write grader map header: %w", err)
	}
	for _, grader := range order {
		if err := w.Write([]string{grader, strconv.Itoa(ids[grader])}); err != nil {
			return fmt.Errorf("failed to write grader map row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush grader map: %w", err)
	}

	for _, row := range table.Rows {
		row[report.ColGrader] = strconv.Itoa(ids[row[report.ColGrader]])
	}

	return nil
}
