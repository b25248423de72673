package sinerider

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SoundPlayer plays named cues. Play never blocks the frame loop.
type SoundPlayer interface {
	Play(name string)
}

// SoundPlayerFunc adapts a function to SoundPlayer.
type SoundPlayerFunc func(name string)

// Play implements SoundPlayer.
func (f SoundPlayerFunc) Play(name string) { f(name) }

// DefaultSampleRate is the output rate used by the runner.
const DefaultSampleRate = beep.SampleRate(44100)

// SoundBank holds decoded clips and plays them through a mixer attached to
// the speaker. Until Start is called, plays are only counted.
type SoundBank struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	clips   map[string]*beep.Buffer
	volume  map[string]float64
	plays   map[string]int
	mixer   *beep.Mixer
	started bool
	log     *zap.Logger
}

// NewSoundBank creates an empty bank at the given sample rate.
func NewSoundBank(rate beep.SampleRate) *SoundBank {
	return &SoundBank{
		rate:   rate,
		clips:  make(map[string]*beep.Buffer),
		volume: make(map[string]float64),
		plays:  make(map[string]int),
		mixer:  &beep.Mixer{},
		log:    zap.NewNop(),
	}
}

// SetLogger sets the logger used for unknown cues and decode errors.
func (b *SoundBank) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	b.log = log
}

// SampleRate returns the bank's output rate.
func (b *SoundBank) SampleRate() beep.SampleRate { return b.rate }

// Add stores a clip under name, replacing any previous one.
func (b *SoundBank) Add(name string, buf *beep.Buffer) {
	b.mu.Lock()
	b.clips[name] = buf
	b.mu.Unlock()
}

// SetVolume sets a clip's linear gain. 1 is unchanged, 0 is silent.
func (b *SoundBank) SetVolume(name string, v float64) {
	b.mu.Lock()
	b.volume[name] = v
	b.mu.Unlock()
}

// Has reports whether a clip is registered under name.
func (b *SoundBank) Has(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.clips[name]
	return ok
}

// Names returns the registered clip names, sorted.
func (b *SoundBank) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.clips))
	for n := range b.clips {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Plays returns how many times name has been played.
func (b *SoundBank) Plays(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.plays[name]
}

// AddTone synthesizes a sine tone with a short fade-out and stores it.
func (b *SoundBank) AddTone(name string, freq float64, d time.Duration) error {
	sine, err := generators.SineTone(b.rate, freq)
	if err != nil {
		return fmt.Errorf("tone %s: %w", name, err)
	}
	n := b.rate.N(d)
	buf := beep.NewBuffer(beep.Format{SampleRate: b.rate, NumChannels: 2, Precision: 2})
	buf.Append(&fadeOut{Streamer: beep.Take(n, sine), total: n})
	b.Add(name, buf)
	return nil
}

// AddDefaultCues registers synthesized goal and level cues for any that
// are missing.
func (b *SoundBank) AddDefaultCues() error {
	cues := []struct {
		name string
		freq float64
		dur  time.Duration
	}{
		{SoundGoalSuccess, 880, 180 * time.Millisecond},
		{SoundGoalFail, 196, 300 * time.Millisecond},
		{SoundLevelSuccess, 1318.5, 600 * time.Millisecond},
	}
	for _, c := range cues {
		if b.Has(c.name) {
			continue
		}
		if err := b.AddTone(c.name, c.freq, c.dur); err != nil {
			return err
		}
	}
	return nil
}

// Start initializes the speaker and attaches the mixer.
func (b *SoundBank) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	if err := speaker.Init(b.rate, b.rate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(b.mixer)
	b.started = true
	return nil
}

// Close stops playback and detaches from the speaker.
func (b *SoundBank) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return
	}
	speaker.Lock()
	b.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	b.started = false
}

// Play mixes the named clip into the output. Unknown names are logged and
// ignored.
func (b *SoundBank) Play(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.clips[name]
	if !ok {
		b.log.Warn("unknown sound", zap.String("name", name))
		return
	}
	b.plays[name]++
	if !b.started {
		return
	}
	var s beep.Streamer = buf.Streamer(0, buf.Len())
	if v, ok := b.volume[name]; ok {
		s = gain(s, v)
	}
	speaker.Lock()
	b.mixer.Add(s)
	speaker.Unlock()
}

func gain(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

// fadeOut linearly ramps the last fifth of a streamer down to silence.
type fadeOut struct {
	beep.Streamer
	total int
	pos   int
}

func (f *fadeOut) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.Streamer.Stream(samples)
	tail := f.total / 5
	for i := 0; i < n; i++ {
		left := f.total - f.pos
		if tail > 0 && left < tail {
			k := float64(left) / float64(tail)
			samples[i][0] *= k
			samples[i][1] *= k
		}
		f.pos++
	}
	return n, ok
}

// LoadSoundBank decodes every WAV file in files (name to path) in parallel
// and returns a bank at rate. Clips at other rates are resampled. The first
// decode error cancels the rest.
func LoadSoundBank(ctx context.Context, rate beep.SampleRate, files map[string]string) (*SoundBank, error) {
	bank := NewSoundBank(rate)
	g, ctx := errgroup.WithContext(ctx)
	for name, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, err := decodeWAV(path, rate)
			if err != nil {
				return fmt.Errorf("sound %s: %w", name, err)
			}
			bank.Add(name, buf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bank, nil
}

func decodeWAV(path string, rate beep.SampleRate) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != rate {
		s = beep.Resample(4, format.SampleRate, rate, streamer)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: format.Precision})
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return buf, nil
}
