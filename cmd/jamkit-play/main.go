package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamkit/jamkit"
	"github.com/jamkit/jamkit/engine"
	"github.com/jamkit/jamkit/oto"
	"github.com/jamkit/jamkit/synth"
	"github.com/jamkit/jamkit/version"
)

func main() {
	directory := flag.String("o", "", "Directory where to output the rendered file. The directory and its parents are created if needed. By default, the current working directory.")
	name := flag.String("n", "demo", "Base name of the output file, without extension.")
	rawOut := flag.Bool("r", false, "Render the demo pattern to a .raw file instead of playing it. Saves a stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Render the demo pattern to a .wav file instead of playing it. Saves a stereo float32 buffer to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *rawOut || *wavOut {
		if err := render(*directory, *name, *rawOut, *wavOut, *pcm); err != nil {
			fmt.Fprintf(os.Stderr, "could not render: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := play(); err != nil {
		fmt.Fprintf(os.Stderr, "could not play: %v\n", err)
		os.Exit(1)
	}
}

// play unlocks the audio gate against the system audio device and runs the
// demo pattern live.
func play() error {
	bus := synth.NewBus()
	s := synth.NewSynth(bus)
	reports := engine.NewReports()
	go func() {
		for report := range reports.C {
			fmt.Fprintln(os.Stderr, report)
		}
	}()
	gate := engine.NewGate(s, func() (jamkit.AudioContext, error) {
		return oto.NewContext()
	}, reports)
	if err := gate.Unlock(); err != nil {
		return err
	}
	defer gate.Close()
	kit, err := engine.NewDrumKit(s, gate, reports)
	if err != nil {
		return err
	}
	defer kit.Dispose()
	melodic, err := engine.NewMelodic(s, gate, reports)
	if err != nil {
		return err
	}
	defer melodic.Dispose()
	feedback := engine.NewFeedback(s, gate, reports)
	defer feedback.DisposeAll()
	feedback.PlaySuccess()
	time.Sleep(600 * time.Millisecond)
	demoPattern(kit, melodic)
	time.Sleep(3 * time.Second) // let the reverb tails ring out
	return nil
}

// render runs the demo pattern ungated and offline, writing the result to
// disk instead of a device.
func render(directory, name string, rawOut, wavOut, pcm bool) error {
	bus := synth.NewBus()
	s := synth.NewSynth(bus)
	kit, err := engine.NewDrumKit(s, nil, nil)
	if err != nil {
		return err
	}
	melodic, err := engine.NewMelodic(s, nil, nil)
	if err != nil {
		return err
	}
	demoPattern(kit, melodic)
	buffer := make(jamkit.AudioBuffer, synth.Samples(5*time.Second))
	if err := s.Render(buffer); err != nil {
		return err
	}
	if rawOut {
		raw, err := jamkit.Raw(buffer, pcm)
		if err != nil {
			return fmt.Errorf("could not generate .raw file: %v", err)
		}
		if err := output(directory, name, ".raw", raw); err != nil {
			return err
		}
	}
	if wavOut {
		wav, err := jamkit.Wav(buffer, pcm)
		if err != nil {
			return fmt.Errorf("could not generate .wav file: %v", err)
		}
		if err := output(directory, name, ".wav", wav); err != nil {
			return err
		}
	}
	return nil
}

// demoPattern schedules one bar of drums at 120 BPM plus a chord, exercising
// every drum voice at least once.
func demoPattern(kit *engine.DrumKit, melodic *engine.Melodic) {
	const eighth = 250 * time.Millisecond
	hits := []struct {
		drum jamkit.DrumType
		step int
	}{
		{jamkit.Kick, 0}, {jamkit.Hihat, 1}, {jamkit.Snare, 2}, {jamkit.Hihat, 3},
		{jamkit.Kick, 4}, {jamkit.Openhat, 5}, {jamkit.Snare, 6}, {jamkit.Tom1, 7},
		{jamkit.Tom2, 8}, {jamkit.Ride, 9}, {jamkit.Crash, 10},
	}
	for _, h := range hits {
		kit.TriggerAt(h.drum, engine.DefaultVelocity, time.Duration(h.step)*eighth)
	}
	melodic.TriggerChord([]string{"C4", "E4", "G4", "B4"}, 0.6)
}

func output(directory, name, extension string, contents []byte) error {
	dir := directory
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
		}
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory %v: %v", dir, err)
	}
	f := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+extension)
	if err := os.WriteFile(f, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %v", f, err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Jamkit command line utility for auditioning the instrument voices.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
