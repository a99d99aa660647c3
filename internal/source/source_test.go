package source

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/sigview/sigview/internal/scope"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistry_UnknownSource(t *testing.T) {
	_, err := New("does-not-exist", scope.New(), Config{}, testLogger())
	if !errors.Is(err, scope.ErrCapabilityViolation) {
		t.Fatalf("expected ErrCapabilityViolation, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	names := Names()
	want := map[string]bool{"noise": false, "sinusoid": false}
	for _, name := range names {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("built-in source %q missing from Names(): %v", name, names)
		}
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Names() not in lexical order: %v", names)
		}
	}
}

func TestSinusoid_DefaultsConfigureScope(t *testing.T) {
	sc := scope.New()
	if _, err := New("sinusoid", sc, Config{}, testLogger()); err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := sc.SampleRate(); got != defaultSinusoidRate {
		t.Errorf("expected default samplerate %v, got %v", float64(defaultSinusoidRate), got)
	}
	if got := sc.Channels(); got != defaultSinusoidChannels {
		t.Errorf("expected default channel count %d, got %d", defaultSinusoidChannels, got)
	}

	labels := sc.Labels()
	if len(labels) != defaultSinusoidChannels {
		t.Fatalf("expected %d labels, got %d", defaultSinusoidChannels, len(labels))
	}
	if labels[0] != "cos(2*Pi*f*t + 0)" {
		t.Errorf("unexpected first label: %q", labels[0])
	}
	if labels[2] != "cos(2*Pi*f*t + 90)" {
		t.Errorf("unexpected third label: %q", labels[2])
	}
}

func TestSinusoid_PhaseOffsets(t *testing.T) {
	sc := scope.New()
	src, err := NewSinusoid(sc, Config{Channels: 4}, testLogger())
	if err != nil {
		t.Fatalf("NewSinusoid failed: %v", err)
	}

	s := src.(*Sinusoid)
	for ch, phase := range s.phases {
		want := float64(ch) * math.Pi / 2
		if math.Abs(phase-want) > 1e-12 {
			t.Errorf("channel %d: expected phase %v, got %v", ch, want, phase)
		}
	}
}

func TestWhiteNoise_DefaultsConfigureScope(t *testing.T) {
	sc := scope.New()
	if _, err := New("noise", sc, Config{}, testLogger()); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := sc.SampleRate(); got != defaultNoiseRate {
		t.Errorf("expected default samplerate %v, got %v", float64(defaultNoiseRate), got)
	}
	if got := sc.Channels(); got != defaultNoiseChannels {
		t.Errorf("expected default channel count %d, got %d", defaultNoiseChannels, got)
	}
}

func TestSources_ProduceUntilStopped(t *testing.T) {
	for _, name := range []string{"sinusoid", "noise"} {
		t.Run(name, func(t *testing.T) {
			sc := scope.New(scope.WithRefreshInterval(2 * time.Millisecond))
			cfg := Config{SampleRate: 10000, Channels: 2, BatchSize: 50}

			src, err := New(name, sc, cfg, testLogger())
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if err := sc.AttachSource(src); err != nil {
				t.Fatalf("AttachSource failed: %v", err)
			}

			sc.Start()
			deadline := time.After(2 * time.Second)
			for sc.SeriesLen() == 0 {
				select {
				case <-deadline:
					t.Fatal("source produced no samples")
				case <-time.After(5 * time.Millisecond):
				}
			}

			done := make(chan struct{})
			go func() {
				sc.Stop()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("Stop did not terminate the producer loop")
			}
		})
	}
}
