package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
)

var csvHeader = []string{"Business Name", "Phone Number", "Email Address", "Website", "Address"}

// saveToCSV writes one header row plus one row per record. An empty record
// list is a logged no-op: no file is created.
func saveToCSV(records []business, path string) error {
	if len(records) == 0 {
		log.Println("No data to save.")
		return nil
	}

	log.Printf("Saving %d businesses to %s", len(records), path)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, b := range records {
		row := []string{b.Name, b.Phone, b.Email, b.Website, b.Address}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row for %q: %w", b.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}

	log.Printf("Data saved to %s", path)
	logSummary(records)
	return nil
}

func logSummary(records []business) {
	withEmail, withPhone, withWebsite := 0, 0, 0
	for _, b := range records {
		if b.Email != "" {
			withEmail++
		}
		if b.Phone != "" {
			withPhone++
		}
		if b.Website != "" {
			withWebsite++
		}
	}
	log.Printf("Summary: total businesses=%d, with emails=%d, with phones=%d, with websites=%d",
		len(records), withEmail, withPhone, withWebsite)
}
