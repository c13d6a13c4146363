package synth

import "github.com/chewxy/math32"

// CompressorSpec configures the dynamics stage of a chain. Attack and Release
// are the smoothing times of the power follower, in seconds. Threshold is a
// linear amplitude in [0, 1]. Ratio is in [0, 1]: 0 leaves the signal alone,
// 1 flattens everything above the threshold.
type CompressorSpec struct {
	Attack    float32 `yaml:"attack"`
	Release   float32 `yaml:"release"`
	Threshold float32 `yaml:"threshold"`
	Ratio     float32 `yaml:"ratio"`
}

// compressorNode squares the stereo signal to get its power, follows it with
// an attack/release-smoothed level, and applies gain reduction above the
// threshold.
type compressorNode struct {
	spec  CompressorSpec
	level float32
}

func newCompressorNode(spec CompressorSpec) *compressorNode {
	return &compressorNode{spec: spec}
}

func (c *compressorNode) process(buf []float32) {
	attack := smoothingCoef(c.spec.Attack)
	release := smoothingCoef(c.spec.Release)
	threshold2 := c.spec.Threshold * c.spec.Threshold
	for i := 0; i < len(buf); i += 2 {
		power := buf[i]*buf[i] + buf[i+1]*buf[i+1]
		alpha := attack
		if power < c.level {
			alpha = release
		}
		c.level += (power - c.level) * alpha
		var gain float32 = 1
		if c.level > threshold2 {
			gain = math32.Pow(threshold2/c.level, c.spec.Ratio/2)
		}
		buf[i] *= gain
		buf[i+1] *= gain
	}
}

// smoothingCoef converts a time constant in seconds to the coefficient of a
// first order low pass IIR.
func smoothingCoef(seconds float32) float32 {
	if seconds <= 0 {
		return 1
	}
	return 1 - math32.Exp(-1/(seconds*sampleRate))
}
