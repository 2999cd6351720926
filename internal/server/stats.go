package server

import (
	"time"

	"github.com/turbolytics/hydrator/internal/hydrate"
)

type Stats struct {
	Hydrations      int64     `json:"hydrations"`
	Rejected        int64     `json:"rejected"`
	MissingFields   int64     `json:"missing_fields"`
	UnknownKeys     int64     `json:"unknown_keys"`
	MismatchedTypes int64     `json:"mismatched_types"`
	LastHydratedAt  time.Time `json:"last_hydrated_at,omitempty"`
}

func (s *Stats) observe(r *hydrate.Result, rejected bool, at time.Time) {
	s.Hydrations++
	if rejected {
		s.Rejected++
	}
	s.MissingFields += int64(len(r.Missing))
	s.UnknownKeys += int64(len(r.Unknown))
	s.MismatchedTypes += int64(len(r.Mismatched))
	s.LastHydratedAt = at
}
