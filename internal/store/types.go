// Package store provides the SQLite word journal for viettype.
//
// Every word a session commits can be recorded with its raw keystrokes,
// the composed text and whether the engine accepted it. The journal exists
// to tune the rule and phonotactic tables: the most frequent invalid raw
// sequences are the spellings users type that the tables reject.
package store

import "time"

// Entry is one committed word.
type Entry struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	AppID       string    `json:"app_id"`
	CommittedAt time.Time `json:"committed_at"`
	Raw         string    `json:"raw"`
	// Composed is empty for invalid words.
	Composed string `json:"composed,omitempty"`
	Valid    bool   `json:"valid"`
}

// SessionRecord is the summary of a closed input session.
type SessionRecord struct {
	ID           string
	AppID        string
	DocID        string
	StartedAt    time.Time
	EndedAt      time.Time
	Keystrokes   int
	ValidWords   int
	InvalidWords int
}

// RawCount is a raw keystroke sequence and how often it was committed.
type RawCount struct {
	Raw   string `json:"raw"`
	Count int    `json:"count"`
}

// Stats summarises the journal.
type Stats struct {
	Words    int `json:"words"`
	Valid    int `json:"valid"`
	Invalid  int `json:"invalid"`
	Sessions int `json:"sessions"`
	// First and Last are zero when the journal is empty.
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
	// TopInvalid lists the most frequent invalid raw sequences, most
	// frequent first.
	TopInvalid []RawCount `json:"top_invalid"`
}

// ValidRatio returns the share of valid words, 0 for an empty journal.
func (s *Stats) ValidRatio() float64 {
	if s.Words == 0 {
		return 0
	}
	return float64(s.Valid) / float64(s.Words)
}
