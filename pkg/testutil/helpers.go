// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
)

// FindRecord finds a record by client name in the records slice.
// Returns the first match, nil otherwise.
func FindRecord(records []*simulation.Record, clientName string) *simulation.Record {
	for _, r := range records {
		if r != nil && r.ClientName == clientName {
			return r
		}
	}
	return nil
}

// Records collects the records of the successful batch results, keeping
// input order, and the errors of the rest keyed by input index.
func Records(results []simulation.BatchResult) ([]*simulation.Record, map[int]error) {
	records := make([]*simulation.Record, 0, len(results))
	failures := make(map[int]error)
	for _, result := range results {
		if result.Err != nil {
			failures[result.Index] = result.Err
			continue
		}
		records = append(records, result.Record)
	}
	return records, failures
}
