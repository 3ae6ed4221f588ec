package models

import "time"

// Tour is the catalog entry a draft is opened against. The wizard keeps a
// read-only snapshot of it and never mutates catalog data.
type Tour struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Price      float64  `json:"price" yaml:"price"`
	Duration   string   `json:"duration" yaml:"duration"`
	Capacity   int      `json:"capacity" yaml:"capacity"`
	StartTimes []string `json:"startTimes" yaml:"start_times"`

	FetchedAt time.Time `json:"fetchedAt,omitempty" yaml:"-"`
}

// HasStartTime reports whether t is one of the offered start times.
func (t Tour) HasStartTime(startTime string) bool {
	for _, st := range t.StartTimes {
		if st == startTime {
			return true
		}
	}
	return false
}
