// Package partition enumerates the fixed set of letter partitions scraped per run.
package partition

import "strings"

// Placeholder is substituted with the partition key when building addresses.
const Placeholder = "{letter}"

// DefaultURLTemplate points at the per-letter name listings.
const DefaultURLTemplate = "https://thezambian.com/online/zambian-names-beginning-with-the-letter-" + Placeholder + "/"

// Count is the number of partitions in a run.
const Count = 26

// Partition is one unit of work: a single letter and the page listing its names.
type Partition struct {
	Key     string
	Ordinal int
	Address string
}

// Label returns the upper-case key used in headings, logs and artifact names.
func (p Partition) Label() string {
	return strings.ToUpper(p.Key)
}

// Enumerate returns the partitions a..z in alphabetic order with addresses built
// from template. A template without the placeholder yields the same address for
// every partition.
func Enumerate(template string) []Partition {
	out := make([]Partition, 0, Count)
	for i := 0; i < Count; i++ {
		key := string(rune('a' + i))
		out = append(out, Partition{
			Key:     key,
			Ordinal: i,
			Address: strings.ReplaceAll(template, Placeholder, key),
		})
	}
	return out
}
