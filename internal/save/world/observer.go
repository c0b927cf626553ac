package world

// Outcome classifies a single chunk lookup. Callers only see found/absent;
// observers can tell the absent cases apart.
type Outcome int

const (
	OutcomeFound Outcome = iota
	// OutcomeNoRegion: the region is not in the existence index.
	OutcomeNoRegion
	// OutcomeEmpty: the region opened but the slot is unpopulated.
	OutcomeEmpty
	// OutcomeCorrupt: the region or slot could not be read or decoded.
	OutcomeCorrupt
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNoRegion:
		return "no_region"
	case OutcomeEmpty:
		return "empty"
	case OutcomeCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

type Op string

const (
	OpChunk      Op = "chunk"
	OpChunkMTime Op = "chunk_mtime"
)

// Observer receives one call per lookup. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveLookup(kind string, op Op, outcome Outcome)
}

type nopObserver struct{}

func (nopObserver) ObserveLookup(string, Op, Outcome) {}
