package params

// ScrollChainConfig carries the activation time of each Scroll hardfork,
// following the go-ethereum ChainConfig convention of one *uint64 field per
// fork, each holding the genesis-relative activation timestamp (nil means
// "never activated").
type ScrollChainConfig struct {
	ChainID *uint64

	BernoulliTime *uint64
	CurieTime     *uint64
	DarwinTime    *uint64
	EuclidTime    *uint64
	FeynmanTime   *uint64
	GalileoTime   *uint64
}

func isTimestampForked(s *uint64, time uint64) bool {
	return s != nil && *s <= time
}

// Spec resolves the highest ScrollSpecId active at the given block time.
func (c *ScrollChainConfig) Spec(time uint64) ScrollSpecId {
	switch {
	case isTimestampForked(c.GalileoTime, time):
		return GALILEO
	case isTimestampForked(c.FeynmanTime, time):
		return FEYNMAN
	case isTimestampForked(c.EuclidTime, time):
		return EUCLID
	case isTimestampForked(c.DarwinTime, time):
		return DARWIN
	case isTimestampForked(c.CurieTime, time):
		return CURIE
	case isTimestampForked(c.BernoulliTime, time):
		return BERNOULLI
	default:
		return SHANGHAI
	}
}

// IsBernoulli, IsCurie, ... mirror go-ethereum's per-fork IsXxx(time) helpers
// (see the teacher's IsEIP7706), generalized to the Scroll fork schedule.
func (c *ScrollChainConfig) IsBernoulli(time uint64) bool { return c.Spec(time).IsEnabledIn(BERNOULLI) }
func (c *ScrollChainConfig) IsCurie(time uint64) bool     { return c.Spec(time).IsEnabledIn(CURIE) }
func (c *ScrollChainConfig) IsDarwin(time uint64) bool    { return c.Spec(time).IsEnabledIn(DARWIN) }
func (c *ScrollChainConfig) IsEuclid(time uint64) bool    { return c.Spec(time).IsEnabledIn(EUCLID) }
func (c *ScrollChainConfig) IsFeynman(time uint64) bool   { return c.Spec(time).IsEnabledIn(FEYNMAN) }
func (c *ScrollChainConfig) IsGalileo(time uint64) bool   { return c.Spec(time).IsEnabledIn(GALILEO) }

// IsEIP7702 reports whether EIP-7702 (set-code transactions / authority
// delegation) is active. On Scroll this is tied to EUCLID rather than to
// mainnet's Prague, per spec §4.5.
func (c *ScrollChainConfig) IsEIP7702(time uint64) bool { return c.IsEuclid(time) }

// IsEIP7623 reports whether EIP-7623 (calldata gas floor) is active. On
// Scroll this is tied to FEYNMAN, per spec §4.5.
func (c *ScrollChainConfig) IsEIP7623(time uint64) bool { return c.IsFeynman(time) }
