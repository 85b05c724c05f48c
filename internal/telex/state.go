package telex

// State is the engine's whole reporting channel: invalid input is an
// outcome, not an error.
type State uint8

const (
	// Composing is the state of an empty engine.
	Composing State = iota
	// Valid means the keystrokes so far form a plausible syllable.
	Valid
	// Invalid means they do not; the raw keystrokes are the fallback.
	Invalid
	// CommittedValid freezes the composed text for Retrieve.
	CommittedValid
	// CommittedInvalid freezes the raw keystrokes for RetrieveRaw.
	CommittedInvalid
)

var stateNames = [...]string{"composing", "valid", "invalid", "committed-valid", "committed-invalid"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Committed reports whether s is one of the terminal committed states.
func (s State) Committed() bool {
	return s == CommittedValid || s == CommittedInvalid
}
