package domain

// Feed is the live display feed: component kind -> {label: current value}.
type Feed map[Kind]map[string]Value

// Set records the value of one component.
func (f Feed) Set(kind Kind, label string, v Value) {
	if f[kind] == nil {
		f[kind] = make(map[string]Value)
	}
	f[kind][label] = v
}

// FeedDiff represents the changes between two feeds.
// It is designed to be serialized to JSON for partial updates on the client.
type FeedDiff struct {
	// Changed holds added or modified values, keyed like the feed.
	Changed map[Kind]map[string]Value `json:"changed,omitempty"`

	// Removed lists labels that disappeared (after a component reload).
	Removed []string `json:"removed,omitempty"`
}

// DiffFeed calculates the difference between oldFeed and newFeed.
// If oldFeed is nil, the diff carries the entire newFeed (initial load).
// It returns nil when nothing changed.
func DiffFeed(oldFeed, newFeed Feed) *FeedDiff {
	diff := &FeedDiff{}

	// 1. Added or modified
	for kind, values := range newFeed {
		for label, newVal := range values {
			oldVal, exists := oldFeed[kind][label]
			if exists && Equal(oldVal, newVal) && oldVal.Type() == newVal.Type() {
				continue
			}
			if diff.Changed == nil {
				diff.Changed = make(map[Kind]map[string]Value)
			}
			if diff.Changed[kind] == nil {
				diff.Changed[kind] = make(map[string]Value)
			}
			diff.Changed[kind][label] = newVal
		}
	}

	// 2. Deletions
	for kind, values := range oldFeed {
		for label := range values {
			if _, exists := newFeed[kind][label]; !exists {
				diff.Removed = append(diff.Removed, label)
			}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *FeedDiff) IsEmpty() bool {
	return d == nil || (len(d.Changed) == 0 && len(d.Removed) == 0)
}
