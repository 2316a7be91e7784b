package bulkgen

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingEditor struct {
	calls int
	gotIn string
}

func (e *recordingEditor) EditCSV(_ context.Context, csvData, _ string) (string, error) {
	e.calls++
	e.gotIn = csvData
	return csvData, nil
}

func TestGenerateBasicSheet(t *testing.T) {
	t.Parallel()

	g := New(nil)
	sheet, err := g.Generate(context.Background(), Params{
		Start: 1001, End: 1003, EmailDomain: "@u.edu", Role: "student", Department: "CS",
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	lines := strings.Split(sheet, "\n")
	if len(lines) != 4 {
		t.Fatalf("sheet has %d lines, want header + 3", len(lines))
	}
	if lines[0] != "name,email,password,role,department" {
		t.Errorf("header = %q", lines[0])
	}
	fields := strings.Split(lines[1], ",")
	if len(fields) != 5 || fields[0] != "1001" || fields[1] != "1001@u.edu" || fields[3] != "student" || fields[4] != "CS" {
		t.Errorf("first row = %q", lines[1])
	}
	if len(fields[2]) != 10 {
		t.Errorf("password length = %d, want 10", len(fields[2]))
	}
}

func TestLimitsRejectedBeforeGeneration(t *testing.T) {
	t.Parallel()

	editor := &recordingEditor{}
	g := New(editor)
	ctx := context.Background()

	// 50,001 rows without instructions.
	_, err := g.Generate(ctx, Params{Start: 1, End: 50001})
	if !errors.Is(err, ErrTooManyRows) {
		t.Errorf("basic over-limit = %v, want ErrTooManyRows", err)
	}

	// 291 rows with instructions.
	_, err = g.Generate(ctx, Params{Start: 1, End: 291, Instructions: "capitalize names"})
	if !errors.Is(err, ErrTooManyRows) {
		t.Errorf("AI over-limit = %v, want ErrTooManyRows", err)
	}
	if editor.calls != 0 {
		t.Error("editor invoked despite limit rejection")
	}

	// Boundary cases are accepted.
	if _, err := g.Generate(ctx, Params{Start: 1, End: 290, Instructions: "x"}); err != nil {
		t.Errorf("290-row AI request rejected: %v", err)
	}
}

func TestInvalidRange(t *testing.T) {
	t.Parallel()

	g := New(nil)
	if _, err := g.Generate(context.Background(), Params{Start: 10, End: 10}); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("start==end = %v, want ErrRangeInvalid", err)
	}
	if _, err := g.Generate(context.Background(), Params{Start: 10, End: 5}); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("start>end = %v, want ErrRangeInvalid", err)
	}
}

func TestInstructionsRouteThroughEditor(t *testing.T) {
	t.Parallel()

	editor := &recordingEditor{}
	g := New(editor)

	_, err := g.Generate(context.Background(), Params{
		Start: 1, End: 3, EmailDomain: "@u.edu", Role: "student", Instructions: "uppercase",
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if editor.calls != 1 {
		t.Fatalf("editor calls = %d, want 1", editor.calls)
	}
	if !strings.HasPrefix(editor.gotIn, "name,email,password,role,department") {
		t.Error("editor did not receive the generated sheet")
	}
}

func TestPasswordCharsets(t *testing.T) {
	t.Parallel()

	pw, err := Password(64, false)
	if err != nil {
		t.Fatalf("Password() error: %v", err)
	}
	if strings.ContainsAny(pw, "!@#$%^&*") {
		t.Error("simple password contains symbols")
	}

	// Complex passwords draw from the symbol set; with 64 characters the
	// odds of zero symbols are (62/70)^64, below one in a thousand, so
	// sample a few.
	sawSymbol := false
	for i := 0; i < 8 && !sawSymbol; i++ {
		pw, err := Password(64, true)
		if err != nil {
			t.Fatalf("Password() error: %v", err)
		}
		sawSymbol = strings.ContainsAny(pw, "!@#$%^&*")
	}
	if !sawSymbol {
		t.Error("complex passwords never contained a symbol")
	}
}
