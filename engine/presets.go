package engine

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jamkit/jamkit"
	"github.com/jamkit/jamkit/synth"
)

//go:embed presets/*.yml
var presetFS embed.FS

// presetData is the parsed contents of the embedded preset files: the fixed
// per-drum chain tunings, the default melodic instrument, and the feedback
// voices.
type presetData struct {
	drums    map[string]synth.ChainSpec
	melodic  synth.ChainSpec
	feedback map[string]synth.ChainSpec
}

var presets struct {
	once sync.Once
	data *presetData
	err  error
}

func loadPresets() (*presetData, error) {
	presets.once.Do(func() {
		data := &presetData{}
		if err := loadPresetFile("presets/drums.yml", &data.drums); err != nil {
			presets.err = err
			return
		}
		if err := loadPresetFile("presets/melodic.yml", &data.melodic); err != nil {
			presets.err = err
			return
		}
		if err := loadPresetFile("presets/feedback.yml", &data.feedback); err != nil {
			presets.err = err
			return
		}
		presets.data = data
	})
	return presets.data, presets.err
}

func loadPresetFile(name string, out any) error {
	raw, err := presetFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read preset %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse preset %s: %w", name, err)
	}
	return nil
}

// DrumSpec returns the fixed chain tuning of a drum type.
func DrumSpec(d jamkit.DrumType) (synth.ChainSpec, error) {
	data, err := loadPresets()
	if err != nil {
		return synth.ChainSpec{}, err
	}
	spec, ok := data.drums[d.String()]
	if !ok {
		return synth.ChainSpec{}, fmt.Errorf("no preset for drum %v", d)
	}
	return spec, nil
}

// MelodicSpec returns the default melodic instrument chain spec.
func MelodicSpec() (synth.ChainSpec, error) {
	data, err := loadPresets()
	if err != nil {
		return synth.ChainSpec{}, err
	}
	return data.melodic, nil
}

func feedbackSpec(name string) (synth.ChainSpec, error) {
	data, err := loadPresets()
	if err != nil {
		return synth.ChainSpec{}, err
	}
	spec, ok := data.feedback[name]
	if !ok {
		return synth.ChainSpec{}, fmt.Errorf("no preset for feedback voice %q", name)
	}
	return spec, nil
}
