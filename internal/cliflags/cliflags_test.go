package cliflags_test

import (
	"errors"
	"testing"

	"github.com/archivelab/huffman/internal/cliflags"
)

func TestParseValidEncode(t *testing.T) {
	f, err := cliflags.Parse([]string{"-e", "-i", "in.txt", "-o", "out.bin"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !f.Encode || f.Decode {
		t.Fatalf("expected Encode=true Decode=false, got Encode=%v Decode=%v", f.Encode, f.Decode)
	}
	if f.Input != "in.txt" || f.Output != "out.bin" {
		t.Fatalf("Input/Output = %q/%q, want in.txt/out.bin", f.Input, f.Output)
	}
	if f.ASCII || f.Print || f.Verbose || f.Help {
		t.Fatalf("unexpected flag set true: %+v", f)
	}
}

func TestParseValidDecodeWithOptionalFlags(t *testing.T) {
	f, err := cliflags.Parse([]string{"-d", "-a", "-p", "-v", "-i", "in.huf", "-o", "out.txt"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !f.Decode || !f.ASCII || !f.Print || !f.Verbose {
		t.Fatalf("expected all optional flags true, got %+v", f)
	}
}

func TestParseModeNotSet(t *testing.T) {
	if _, err := cliflags.Parse([]string{"-i", "in", "-o", "out"}); !errors.Is(err, cliflags.ErrModeNotSet) {
		t.Fatalf("expected ErrModeNotSet, got %v", err)
	}
}

func TestParseModeConflict(t *testing.T) {
	if _, err := cliflags.Parse([]string{"-e", "-d", "-i", "in", "-o", "out"}); !errors.Is(err, cliflags.ErrModeConflict) {
		t.Fatalf("expected ErrModeConflict, got %v", err)
	}
}

func TestParseMissingInput(t *testing.T) {
	if _, err := cliflags.Parse([]string{"-e", "-o", "out"}); !errors.Is(err, cliflags.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestParseMissingOutput(t *testing.T) {
	if _, err := cliflags.Parse([]string{"-e", "-i", "in"}); !errors.Is(err, cliflags.ErrMissingOutput) {
		t.Fatalf("expected ErrMissingOutput, got %v", err)
	}
}

// flag itself would silently let the second -e win; this CLI must
// instead reject the duplicate outright.
func TestParseDuplicateEncodeFlag(t *testing.T) {
	if _, err := cliflags.Parse([]string{"-e", "-e", "-i", "in", "-o", "out"}); !errors.Is(err, cliflags.ErrDuplicateFlag) {
		t.Fatalf("expected ErrDuplicateFlag, got %v", err)
	}
}

func TestParseDuplicateInputFlag(t *testing.T) {
	if _, err := cliflags.Parse([]string{"-e", "-i", "a", "-i", "b", "-o", "out"}); !errors.Is(err, cliflags.ErrDuplicateFlag) {
		t.Fatalf("expected ErrDuplicateFlag, got %v", err)
	}
}

func TestParseMissingValueForInput(t *testing.T) {
	if _, err := cliflags.Parse([]string{"-e", "-i"}); !errors.Is(err, cliflags.ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}
}

func TestParseUnknownFlag(t *testing.T) {
	if _, err := cliflags.Parse([]string{"-z", "-i", "in", "-o", "out"}); !errors.Is(err, cliflags.ErrUnknownFlag) {
		t.Fatalf("expected ErrUnknownFlag, got %v", err)
	}
}

func TestParseBareArgumentIsUnknownFlag(t *testing.T) {
	if _, err := cliflags.Parse([]string{"in.txt"}); !errors.Is(err, cliflags.ErrUnknownFlag) {
		t.Fatalf("expected ErrUnknownFlag, got %v", err)
	}
}

func TestParseHelpRequestedShortCircuits(t *testing.T) {
	f, err := cliflags.Parse([]string{"-h"})
	if !errors.Is(err, cliflags.ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
	if f == nil || !f.Help {
		t.Fatalf("expected Help=true flags returned alongside ErrHelpRequested")
	}
}

func TestParseHelpIgnoresLaterValidationErrors(t *testing.T) {
	// -h is handled the moment it's seen, before validate() ever runs,
	// so a request for help should succeed even with no mode/input/output.
	if _, err := cliflags.Parse([]string{"-h", "-e", "-d"}); !errors.Is(err, cliflags.ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
}

func TestUsageMentionsEveryFlag(t *testing.T) {
	usage := cliflags.Usage()
	for _, flag := range []string{"-i", "-o", "-e", "-d", "-a", "-p", "-v", "-h"} {
		if !contains(usage, flag) {
			t.Fatalf("usage text missing %q:\n%s", flag, usage)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
