package clock

// Cycles ticks once every fixed number of calls to Ticks. The cpu calls
// Ticks once per cycle, which makes this a deterministic cycles-per-tick
// ratio independent of wall time.
type Cycles struct {
	perTick int
	count   int
}

// NewCycles creates a clock that ticks once every perTick cycles.
func NewCycles(perTick int) *Cycles {
	if perTick < 1 {
		perTick = 1
	}
	return &Cycles{perTick: perTick}
}

// Ticks counts one cycle and returns 1 when a tick completes.
func (c *Cycles) Ticks() int {
	c.count++
	if c.count < c.perTick {
		return 0
	}
	c.count = 0
	return 1
}
