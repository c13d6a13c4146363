package synth

// EnvelopeSpec is the ADSR amplitude shape of a voice. Attack, Decay and
// Release are in seconds; Sustain is the level held while the gate is open,
// in [0, 1].
type EnvelopeSpec struct {
	Attack  float32 `yaml:"attack"`
	Decay   float32 `yaml:"decay"`
	Sustain float32 `yaml:"sustain"`
	Release float32 `yaml:"release"`
}

type envStage int32

const (
	envAttack envStage = iota
	envDecay
	envSustain
	envRelease
	envIdle
)

// envState is the per-voice runtime state of an envelope. The spec is shared
// by all voices of a chain; the state is not.
type envState struct {
	stage envStage
	level float32
}

func (s *envState) reset() {
	s.stage = envAttack
	s.level = 0
}

func (s *envState) idle() bool { return s.stage == envIdle }

// step advances the envelope by one sample and returns the current level.
// Closing the gate forces the release stage from any earlier stage.
func (e *EnvelopeSpec) step(s *envState, gate bool) float32 {
	if !gate && s.stage < envRelease {
		s.stage = envRelease
	}
	switch s.stage {
	case envAttack:
		s.level += envRate(e.Attack)
		if s.level >= 1 {
			s.level = 1
			s.stage = envDecay
		}
	case envDecay:
		s.level -= envRate(e.Decay)
		if s.level <= e.Sustain {
			s.level = e.Sustain
			s.stage = envSustain
		}
	case envSustain:
		s.level = e.Sustain
	case envRelease:
		s.level -= envRate(e.Release)
		if s.level <= 0 {
			s.level = 0
			s.stage = envIdle
		}
	}
	return s.level
}

// envRate converts a stage duration in seconds to a per-sample level delta.
func envRate(seconds float32) float32 {
	if seconds <= 0 {
		return 1
	}
	return 1 / (seconds * sampleRate)
}
