package synth

// ReverbSpec configures the spatial stage of a chain. Wet is the wet/dry mix
// in [0, 1] and is audible immediately on already-sounding notes. Feedback
// controls the tail length; Damp the high-frequency rolloff of the tail.
type ReverbSpec struct {
	Wet      float32 `yaml:"wet"`
	Feedback float32 `yaml:"feedback"`
	Damp     float32 `yaml:"damp"`
}

// combTimes are the comb delay lengths in samples. The right channel reads
// slightly longer lines so the tail decorrelates between channels.
var combTimes = [...]int{1116, 1188, 1277, 1356}

const combStereoSpread = 23

type combLine struct {
	buffer    []float32
	pos       int
	dampState float32
}

func (l *combLine) step(in, feedback, damp float32) float32 {
	out := l.buffer[l.pos]
	l.dampState = damp*l.dampState + (1-damp)*out
	l.buffer[l.pos] = in + feedback*l.dampState
	l.pos++
	if l.pos >= len(l.buffer) {
		l.pos = 0
	}
	return out
}

// reverbNode is a small parallel-comb reverb with a DC blocker on the wet
// signal.
type reverbNode struct {
	spec    ReverbSpec
	lines   [2][len(combTimes)]combLine
	dcIn    [2]float32
	dcState [2]float32
}

func newReverbNode(spec ReverbSpec) *reverbNode {
	r := &reverbNode{spec: spec}
	for c := 0; c < 2; c++ {
		for i, t := range combTimes {
			if c == 1 {
				t += combStereoSpread
			}
			r.lines[c][i].buffer = make([]float32, t)
		}
	}
	return r
}

func (r *reverbNode) process(buf []float32) {
	wet := r.spec.Wet
	feedback := r.spec.Feedback
	damp := r.spec.Damp
	for i := 0; i < len(buf); i += 2 {
		for c := 0; c < 2; c++ {
			in := buf[i+c]
			var tail float32
			for j := range r.lines[c] {
				tail += r.lines[c][j].step(in*0.25, feedback, damp)
			}
			// dc blocker on the tail keeps long feedback from drifting
			r.dcState[c] = tail - r.dcIn[c] + 0.99609375*r.dcState[c]
			r.dcIn[c] = tail
			buf[i+c] = in*(1-wet) + r.dcState[c]*wet
		}
	}
}
