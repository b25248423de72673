package sinerider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSoundBankCountsBeforeStart(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := NewSoundBank(DefaultSampleRate)
	b.SetLogger(zap.New(core))
	require.NoError(t, b.AddDefaultCues())

	assert.Equal(t, []string{SoundGoalFail, SoundGoalSuccess, SoundLevelSuccess}, b.Names())
	b.Play(SoundGoalSuccess)
	b.Play(SoundGoalSuccess)
	b.Play("missing")
	assert.Equal(t, 2, b.Plays(SoundGoalSuccess))
	assert.Zero(t, b.Plays("missing"))
	assert.Equal(t, 1, logs.FilterMessage("unknown sound").Len())
}

func TestAddDefaultCuesKeepsExisting(t *testing.T) {
	b := NewSoundBank(DefaultSampleRate)
	custom := beep.NewBuffer(beep.Format{SampleRate: DefaultSampleRate, NumChannels: 2, Precision: 2})
	b.Add(SoundGoalFail, custom)
	require.NoError(t, b.AddDefaultCues())
	assert.Same(t, custom, b.clips[SoundGoalFail])
	assert.True(t, b.Has(SoundLevelSuccess))
}

func TestAddToneLength(t *testing.T) {
	b := NewSoundBank(beep.SampleRate(8000))
	require.NoError(t, b.AddTone("beep", 440, 250*time.Millisecond))
	assert.Equal(t, 2000, b.clips["beep"].Len())
}

func TestSetLoggerNil(t *testing.T) {
	b := NewSoundBank(DefaultSampleRate)
	b.SetLogger(nil)
	assert.NotPanics(t, func() { b.Play("nothing") })
}

func writeTestWAV(t *testing.T, path string, rate beep.SampleRate, d time.Duration) {
	t.Helper()
	sine, err := generators.SineTone(rate, 440)
	require.NoError(t, err)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(rate.N(d), sine), format))
}

func TestLoadSoundBank(t *testing.T) {
	dir := t.TempDir()
	wind := filepath.Join(dir, "wind.wav")
	shore := filepath.Join(dir, "shore.wav")
	writeTestWAV(t, wind, DefaultSampleRate, 100*time.Millisecond)
	writeTestWAV(t, shore, beep.SampleRate(22050), 100*time.Millisecond)

	b, err := LoadSoundBank(context.Background(), DefaultSampleRate, map[string]string{
		"wind":       wind,
		"lake_shore": shore,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lake_shore", "wind"}, b.Names())
	assert.Equal(t, DefaultSampleRate.N(100*time.Millisecond), b.clips["wind"].Len())
	assert.Positive(t, b.clips["lake_shore"].Len())
}

func TestLoadSoundBankMissingFile(t *testing.T) {
	_, err := LoadSoundBank(context.Background(), DefaultSampleRate, map[string]string{
		"gone": filepath.Join(t.TempDir(), "gone.wav"),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSoundBankCancelled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.wav")
	writeTestWAV(t, p, DefaultSampleRate, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadSoundBank(ctx, DefaultSampleRate, map[string]string{"a": p})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLevelSetsSoundVolume(t *testing.T) {
	b := NewSoundBank(DefaultSampleRate)
	d := &LevelDatum{Name: "Quiet", DefaultExpression: "0", Sounds: []SoundDatum{{Asset: "wind", Volume: 0.3}}}
	newTestLevel(t, d, LevelConfig{Sounds: b})
	assert.Equal(t, 0.3, b.volume["wind"])
}
