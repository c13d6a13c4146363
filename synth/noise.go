package synth

// noiseState is a tiny multiplicative congruential white noise generator.
// Every noise voice carries its own seed so that renders are deterministic
// regardless of how many chains share a synth.
type noiseState struct {
	seed uint32
}

func (n *noiseState) sample() float32 {
	n.seed *= 16007
	return float32(int32(n.seed)) / -2147483648.0
}
