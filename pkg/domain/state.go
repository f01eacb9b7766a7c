package domain

// ItemState tracks where an item is in a single ingestion run.
type ItemState string

const (
	StateFetched      ItemState = "fetched"
	StateExtracted    ItemState = "extracted"
	StateEnriched     ItemState = "enriched"
	StateEvidenced    ItemState = "evidenced"
	StateClassified   ItemState = "classified"
	StateRewritten    ItemState = "rewritten"
	StateRejected     ItemState = "rejected"
	StateDeduplicated ItemState = "deduplicated-out"
	StatePersisted    ItemState = "persisted"
)

// Terminal reports whether no further transition is possible.
func (s ItemState) Terminal() bool {
	switch s {
	case StateRejected, StateDeduplicated, StatePersisted:
		return true
	default:
		return false
	}
}
