package tts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnuragGaddu/Narrate/pkg/core"
)

func TestPiperUnavailableWithoutModel(t *testing.T) {
	p := NewPiper(PiperConfig{})
	if p.Available() {
		t.Fatal("engine with no model path reported available")
	}

	err := p.SynthesizeToFile(context.Background(), "hello", filepath.Join(t.TempDir(), "out.wav"))
	if !core.IsType(err, core.ErrSynthesisUnavailable) {
		t.Fatalf("error = %v, want %s", err, core.ErrSynthesisUnavailable)
	}
}

func TestPiperUnavailableWhenModelMissing(t *testing.T) {
	p := NewPiper(PiperConfig{
		Binary:    "true", // present on any system
		ModelPath: filepath.Join(t.TempDir(), "nope.onnx"),
	})
	if p.Available() {
		t.Fatal("engine with missing model file reported available")
	}
}

func TestPiperRejectsEmptyText(t *testing.T) {
	p := NewPiper(PiperConfig{})
	err := p.SynthesizeToFile(context.Background(), "   ", "out.wav")
	if !core.IsType(err, core.ErrSynthesisFailed) {
		t.Fatalf("error = %v, want %s", err, core.ErrSynthesisFailed)
	}
}

func TestPiperAppendsModelSuffix(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "voice.onnx")
	if err := os.WriteFile(model, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewPiper(PiperConfig{
		Binary:    "true",
		ModelPath: filepath.Join(dir, "voice"), // no .onnx suffix
	})
	if !p.Available() {
		t.Fatal("engine should resolve model path with .onnx appended")
	}
}
