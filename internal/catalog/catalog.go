package catalog

import "time"

/*
The catalog is a record of what has been hydrated.
The catalog is a primitive for verifying, inventorying and auditing
hydration runs.
*/

// Catalog represents the catalog of a single hydration run
type Catalog struct {
	RunID               string    `json:"run_id"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	Record              string    `json:"record"`
	Policy              string    `json:"policy"`
	NumPayloads         int       `json:"num_payloads"`
	NumAccepted         int       `json:"num_accepted"`
	NumRejected         int       `json:"num_rejected"`
	NumMissingFields    int       `json:"num_missing_fields"`
	NumUnknownKeys      int       `json:"num_unknown_keys"`
	NumMismatchedFields int       `json:"num_mismatched_fields"`
	Completed           bool      `json:"completed"`
}
