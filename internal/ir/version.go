package ir

// Version constants for the IR schema and the expansion engine.
const (
	// IRVersion is the IR schema version.
	IRVersion = "1"

	// EngineVersion is the mulderive engine version. It is part of every
	// expansion key so cached output is invalidated on upgrade.
	EngineVersion = "0.1.0"
)
