package filter

import (
	"context"
	"testing"
	"unicode"

	"pgregory.net/rapid"

	"github.com/purechat/purechat-server/scorer/memory"
)

var censorModes = []Mode{ModeFull, ModeWord, ModeAggressive}

func TestCleanVerdictIdempotence(t *testing.T) {
	ctx := context.Background()

	engine, err := NewEngine(memory.NewScorer(0.1, nil), 0.5)
	if err != nil {
		t.Fatal(err)
	}

	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")
		mode := rapid.SampledFrom(censorModes).Draw(rt, "mode")

		out, err := engine.Censor(ctx, text, cleanVerdict, mode)
		if err != nil {
			rt.Fatalf("censor failed: %v", err)
		}
		if out != text {
			rt.Fatalf("clean text changed by mode %q: %q -> %q", mode, text, out)
		}
	})
}

func TestFullModeShapePreservation(t *testing.T) {
	ctx := context.Background()

	engine, err := NewEngine(memory.NewScorer(0.9, nil), 0.5)
	if err != nil {
		t.Fatal(err)
	}

	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")

		out, err := engine.Censor(ctx, text, profaneVerdict, ModeFull)
		if err != nil {
			rt.Fatalf("censor failed: %v", err)
		}

		orig := []rune(text)
		masked := []rune(out)
		if len(masked) != len(orig) {
			rt.Fatalf("rune count changed: %d -> %d", len(orig), len(masked))
		}

		for i, r := range orig {
			if unicode.IsSpace(r) {
				if masked[i] != r {
					rt.Fatalf("whitespace at %d not preserved: %q -> %q", i, r, masked[i])
				}
			} else if masked[i] != '*' {
				rt.Fatalf("rune at %d not masked: %q", i, masked[i])
			}
		}
	})
}

func TestAggressiveModeLiteral(t *testing.T) {
	ctx := context.Background()

	engine, err := NewEngine(memory.NewScorer(0.9, nil), 0.5)
	if err != nil {
		t.Fatal(err)
	}

	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")

		out, err := engine.Censor(ctx, text, profaneVerdict, ModeAggressive)
		if err != nil {
			rt.Fatalf("censor failed: %v", err)
		}
		if out != AggressiveReplacement {
			rt.Fatalf("unexpected replacement: %q", out)
		}
	})
}

func TestWordModeReassembly(t *testing.T) {
	ctx := context.Background()

	// Every segment classifies clean, so word mode must reproduce the
	// input byte for byte, whatever mix of delimiters it contains.
	engine, err := NewEngine(memory.NewScorer(0.0, nil), 0.5)
	if err != nil {
		t.Fatal(err)
	}

	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")

		out, err := engine.Censor(ctx, text, profaneVerdict, ModeWord)
		if err != nil {
			rt.Fatalf("censor failed: %v", err)
		}
		if out != text {
			rt.Fatalf("reassembly mismatch: %q -> %q", text, out)
		}
	})
}

func TestThresholdMonotonicity(t *testing.T) {
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.Float64Range(0, 1).Draw(rt, "p")
		t1 := rapid.Float64Range(0, 1).Draw(rt, "t1")
		t2 := rapid.Float64Range(0, 1).Draw(rt, "t2")
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		s := memory.NewScorer(p, nil)

		lenient, err := NewEngine(s, t1)
		if err != nil {
			rt.Fatalf("engine: %v", err)
		}
		strict, err := NewEngine(s, t2)
		if err != nil {
			rt.Fatalf("engine: %v", err)
		}

		v1, err := lenient.Classify(ctx, "some text")
		if err != nil {
			rt.Fatalf("classify: %v", err)
		}
		v2, err := strict.Classify(ctx, "some text")
		if err != nil {
			rt.Fatalf("classify: %v", err)
		}

		if v2.IsProfane && !v1.IsProfane {
			rt.Fatalf("not monotone: profane at threshold %v but clean at %v", t2, t1)
		}

		// The dominant side of a pair summing to 1.0 is at least 0.5.
		if v1.Confidence < 0.5 || v1.Confidence > 1 {
			rt.Fatalf("confidence out of range: %v", v1.Confidence)
		}
	})
}
