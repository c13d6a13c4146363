package jamkit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// DrumType enumerates the fixed catalog of percussive voices. The engine
// builds exactly one voice chain per type, once, at kit construction.
type DrumType int

const (
	Kick DrumType = iota
	Snare
	Hihat
	Openhat
	Crash
	Ride
	Tom1
	Tom2
)

// DrumTypes lists every DrumType in canonical order.
var DrumTypes = []DrumType{Kick, Snare, Hihat, Openhat, Crash, Ride, Tom1, Tom2}

var drumNames = [...]string{"kick", "snare", "hihat", "openhat", "crash", "ride", "tom1", "tom2"}

func (d DrumType) String() string {
	if d < 0 || int(d) >= len(drumNames) {
		return fmt.Sprintf("drum(%d)", int(d))
	}
	return drumNames[d]
}

// drumPitches is the fixed concert pitch per drum type. Only the pitched
// (membrane) voices actually use it; noise voices ignore pitch entirely.
var drumPitches = map[DrumType]string{
	Kick:    "C1",
	Snare:   "D2",
	Hihat:   "F#4",
	Openhat: "F#4",
	Crash:   "C5",
	Ride:    "D5",
	Tom1:    "F2",
	Tom2:    "C2",
}

// Pitch returns the fixed concert pitch for a drum type, or "" for a value
// outside the catalog.
func Pitch(d DrumType) string {
	return drumPitches[d]
}

var notePattern = regexp.MustCompile(`^([A-Ga-g])([#bB]?)([0-9]+)$`)

// NormalizeNote reassembles a note name token into canonical form: upper-case
// letter, '#' or lower-case 'b' accidental, octave digits. Tokens that do not
// match the note pattern are returned unchanged; the synthesis backend is the
// one that ultimately accepts or rejects them. NormalizeNote never fails and
// is idempotent.
func NormalizeNote(token string) string {
	m := notePattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return token
	}
	accidental := m[2]
	if accidental == "B" {
		accidental = "b"
	}
	return strings.ToUpper(m[1]) + accidental + m[3]
}

var letterSemitones = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}

// NoteFreq converts a note name to its frequency in Hz, with A4 = 440 Hz.
// This is the point where a malformed token is finally rejected.
func NoteFreq(token string) (float32, error) {
	m := notePattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, fmt.Errorf("invalid note name %q", token)
	}
	semitone := letterSemitones[strings.ToUpper(m[1])]
	switch m[2] {
	case "#":
		semitone++
	case "b", "B":
		semitone--
	}
	octave, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, fmt.Errorf("invalid note octave %q: %v", token, err)
	}
	midi := (octave+1)*12 + semitone
	return 440 * math32.Exp2(float32(midi-69)/12), nil
}
