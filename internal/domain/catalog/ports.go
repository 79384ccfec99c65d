package catalog

// Lookup is the injected, read-only view of the static game-data
// catalog. Implementations must be safe for concurrent use; the
// admission pipeline calls them on every request.
type Lookup interface {
	// GetSpec resolves a catalog key to its static spec
	GetSpec(key string) (*Spec, error)

	// CostForLevel returns the credit cost for building the given
	// level of the keyed entry
	CostForLevel(key string, level int) (int, error)
}
