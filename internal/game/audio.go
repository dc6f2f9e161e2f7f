package game

import (
	"io"
	"math"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	BitDepth     = 0 // 32-bit float (oto.FormatFloat32LE)
)

// AudioSystem plays the demo's procedural feedback sounds: a click on
// each beat crossing, a ping per lane activation, a chime for powerups,
// and a sweep on segment changes. All synthesis is generated on the fly.
type AudioSystem struct {
	ctx   *oto.Context
	ready chan struct{}
}

var globalAudio *AudioSystem

var sfxVolume = 0.5

// InitAudio initializes the audio system. The demo runs fine without it;
// every play call is a no-op when initialization failed.
func InitAudio() error {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, BitDepth)
	if err != nil {
		return err
	}
	globalAudio = &AudioSystem{ctx: ctx, ready: ready}
	return nil
}

// Fundamental frequencies for the chromatic lane space, fourth octave.
var noteFreqs = map[string]float64{
	"C": 261.63, "C#": 277.18, "D": 293.66, "D#": 311.13,
	"E": 329.63, "F": 349.23, "F#": 369.99, "G": 392.00,
	"G#": 415.30, "A": 440.00, "A#": 466.16, "B": 493.88,
}

func noteFreq(note string) float64 {
	if f, ok := noteFreqs[note]; ok {
		return f
	}
	return 261.63
}

// PlayBeatClick marks a beat crossing; pitch tracks the note tag and
// brightness tracks beat strength.
func PlayBeatClick(note string, strength float64) {
	play(genBeatClick(noteFreq(note), clampF(strength, 0, 1)), sfxVolume)
}

// PlayLanePing marks a lane activation at the given energy.
func PlayLanePing(note string, energy float64) {
	play(genLanePing(noteFreq(note), clampF(energy, 0, 1)), sfxVolume*0.7)
}

// PlayPowerupChime marks a powerup spawn.
func PlayPowerupChime() {
	play(genPowerupChime(), sfxVolume)
}

// PlaySegmentSweep marks a structural section change.
func PlaySegmentSweep() {
	play(genSegmentSweep(), sfxVolume*0.8)
}

func play(samples []byte, volume float64) {
	if globalAudio == nil || len(samples) == 0 {
		return
	}
	select {
	case <-globalAudio.ready:
	default:
		return
	}
	go func() {
		reader := &soundReader{data: samples}
		player := globalAudio.ctx.NewPlayer(reader)
		player.SetVolume(clampF(volume, 0, 1))
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		player.Close()
	}()
}

type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both stereo channels at frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	buf[i*8] = byte(v)
	buf[i*8+1] = byte(v >> 8)
	buf[i*8+2] = byte(v >> 16)
	buf[i*8+3] = byte(v >> 24)
	buf[i*8+4] = byte(v)
	buf[i*8+5] = byte(v >> 8)
	buf[i*8+6] = byte(v >> 16)
	buf[i*8+7] = byte(v >> 24)
}

// softSat applies gentle tanh-like saturation so stacked clicks never clip hard.
func softSat(x float64) float64 {
	if x > 1.0 {
		return 1.0 - 0.5/(x)
	}
	if x < -1.0 {
		return -1.0 + 0.5/(-x)
	}
	return x - x*x*x/3.0
}

// adsr returns an envelope at normalized progress [0,1].
// attack/decay/release are fractions of the total duration.
func adsr(progress, attack, decay, sustain, release float64) float64 {
	switch {
	case progress < attack:
		return progress / attack
	case progress < attack+decay:
		return 1.0 - (progress-attack)/decay*(1.0-sustain)
	case progress < 1.0-release:
		return sustain
	default:
		return sustain * (1.0 - (progress-(1.0-release))/release)
	}
}

// fm returns an FM-synthesized sample.
func fm(t, carrier, modRatio, modIdx float64) float64 {
	mod := math.Sin(2 * math.Pi * carrier * modRatio * t)
	return math.Sin(2*math.Pi*carrier*t + modIdx*mod)
}

// makeBuf allocates a stereo float32 buffer for n samples.
func makeBuf(n int) []byte { return make([]byte, n*8) }

// genBeatClick: short FM tick whose modulation depth follows strength.
func genBeatClick(freq, strength float64) []byte {
	n := int(0.07 * SampleRate)
	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		env := adsr(p, 0.01, 0.6, 0.0, 0.1)
		s := fm(t, freq, 2.0, (1.5+2.5*strength)*env) * env * (0.3 + 0.4*strength)
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// genLanePing: thin sine an octave up, energy sets length and level.
func genLanePing(freq, energy float64) []byte {
	n := int((0.05 + 0.08*energy) * SampleRate)
	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		env := math.Exp(-p * 9)
		s := math.Sin(2*math.Pi*freq*2*t) * env * (0.12 + 0.25*energy)
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// genPowerupChime: ascending FM bell arpeggio, C5 E5 G5 C6.
func genPowerupChime() []byte {
	freqs := []float64{523.25, 659.25, 783.99, 1046.5}
	noteLen := SampleRate * 70 / 1000
	tail := int(0.15 * SampleRate)
	total := len(freqs)*noteLen + tail
	mix := make([]float64, total)
	for fi, freq := range freqs {
		start := fi * noteLen
		for i := start; i < total; i++ {
			t := float64(i-start) / SampleRate
			p := float64(i-start) / float64(total-start)
			env := math.Exp(-p * 6)
			mix[i] += fm(t, freq, 3.0, 2.0*env) * env * 0.22
		}
	}
	buf := makeBuf(total)
	for i, s := range mix {
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// genSegmentSweep: rising filtered tone announcing a section change.
func genSegmentSweep() []byte {
	n := int(0.35 * SampleRate)
	buf := makeBuf(n)
	phase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		freq := 220 + 660*p
		phase += 2 * math.Pi * freq / SampleRate
		env := adsr(p, 0.1, 0.2, 0.5, 0.3)
		s := math.Sin(phase) * env * 0.2
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}
