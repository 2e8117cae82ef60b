package models

// Global is the singleton counter record. It exists exactly once and hands
// out the next session id.
type Global struct {
	// SessionCount is the number of sessions ever opened; it is also the
	// id the next session will receive.
	SessionCount uint64
}

// GlobalMaxSize is the worst-case borsh footprint of a Global record.
const GlobalMaxSize = 8
