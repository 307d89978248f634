package scrape

import "time"

// Status classifies how a partition resolved.
type Status string

// Partition outcome statuses.
const (
	StatusSuccess Status = "success"
	StatusEmpty   Status = "empty"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// Outcome is the single result produced for one partition.
type Outcome struct {
	Key      string
	Items    []string
	Status   Status
	Err      error
	Duration time.Duration
	// Artifact is the URI of the diagnostic screenshot, if one was stored.
	Artifact string
}

// HasItems reports whether the outcome contributes a document section.
func (o Outcome) HasItems() bool {
	return len(o.Items) > 0
}

// ResultSet holds one Outcome per partition, indexed by partition ordinal.
type ResultSet []Outcome

// Empty reports whether no outcome carries any items.
func (r ResultSet) Empty() bool {
	for _, o := range r {
		if o.HasItems() {
			return false
		}
	}
	return true
}

// Counts tallies outcomes by status.
func (r ResultSet) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, o := range r {
		counts[o.Status]++
	}
	return counts
}

// Items returns the total number of extracted items.
func (r ResultSet) Items() int {
	total := 0
	for _, o := range r {
		total += len(o.Items)
	}
	return total
}
