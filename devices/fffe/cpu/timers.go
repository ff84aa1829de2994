package cpu

// TimerRate is the frequency in herz at which both timers count down.
const TimerRate = 60

// Clock reports how many timer ticks elapsed since it was last asked.
type Clock interface {
	Ticks() int
}

// Timers holds the delay and sound down-counters.
type Timers struct {
	Delay uint8
	Sound uint8
}

// Tick decrements both counters, stopping at 0.
// Returns true if the sound counter just ran out, which is when
// an audible cue is due.
func (t *Timers) Tick() bool {
	if t.Delay > 0 {
		t.Delay--
	}

	if t.Sound == 0 {
		return false
	}

	t.Sound--
	return t.Sound == 0
}

// SoundActive returns true while the sound counter is non-zero.
func (t *Timers) SoundActive() bool {
	return t.Sound > 0
}
