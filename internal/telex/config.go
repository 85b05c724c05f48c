package telex

// Config holds the engine options. It is read-only while a word is being
// composed; see Engine.SetConfig.
type Config struct {
	// AlternateOaUyTonePlacement puts the tone of a bare oa, oe or uy on
	// the second vowel ("hoà", "thuý") instead of the first ("hòa", "thúy").
	AlternateOaUyTonePlacement bool `toml:"alternate_oa_uy_tone_placement" json:"alternate_oa_uy_tone_placement" yaml:"alternate_oa_uy_tone_placement"`

	// AcceptDAnywhere lets a d typed after the vowels turn the leading d
	// into đ ("did" gives "đi").
	AcceptDAnywhere bool `toml:"accept_d_anywhere" json:"accept_d_anywhere" yaml:"accept_d_anywhere"`

	// BackspacedInvalidStaysInvalid keeps a word that went invalid invalid
	// while it is backspaced, instead of recomposing it from the remaining
	// keystrokes.
	BackspacedInvalidStaysInvalid bool `toml:"backspaced_invalid_stays_invalid" json:"backspaced_invalid_stays_invalid" yaml:"backspaced_invalid_stays_invalid"`
}

// DefaultConfig returns the options a fresh install starts with.
func DefaultConfig() Config {
	return Config{
		AlternateOaUyTonePlacement: true,
	}
}
