package params

// ScrollSpecId enumerates the Scroll L2 hardforks in activation order.
// Every hardfork-gated behavior in this module reads through IsEnabledIn
// rather than comparing ScrollSpecId values directly, so that adding a
// future fork only ever extends the ordering below.
type ScrollSpecId uint8

const (
	SHANGHAI ScrollSpecId = iota
	BERNOULLI
	CURIE
	DARWIN
	EUCLID
	FEYNMAN
	GALILEO
)

// String returns the canonical hardfork name used in config files and logs.
func (s ScrollSpecId) String() string {
	switch s {
	case SHANGHAI:
		return "shanghai"
	case BERNOULLI:
		return "bernoulli"
	case CURIE:
		return "curie"
	case DARWIN:
		return "darwin"
	case EUCLID:
		return "euclid"
	case FEYNMAN:
		return "feynman"
	case GALILEO:
		return "galileo"
	default:
		return "unknown"
	}
}

// IsEnabledIn reports whether the receiver hardfork is active at or after
// other. "Enabled in X" means current >= X.
func (s ScrollSpecId) IsEnabledIn(other ScrollSpecId) bool {
	return s >= other
}

// ScrollSpecIdByName resolves a canonical hardfork name to its ScrollSpecId.
func ScrollSpecIdByName(name string) (ScrollSpecId, bool) {
	switch name {
	case "shanghai":
		return SHANGHAI, true
	case "bernoulli":
		return BERNOULLI, true
	case "curie":
		return CURIE, true
	case "darwin":
		return DARWIN, true
	case "euclid":
		return EUCLID, true
	case "feynman":
		return FEYNMAN, true
	case "galileo":
		return GALILEO, true
	default:
		return 0, false
	}
}
