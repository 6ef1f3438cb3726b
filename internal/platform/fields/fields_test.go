package fields

import (
	"errors"
	"strings"
	"testing"

	"advogados-solidarios/internal/platform/apperr"
)

func TestTruncate_FiftyCharCap(t *testing.T) {
	typed := strings.Repeat("a", 55)
	got := Email.Clip(typed)
	if len(got) != 50 {
		t.Fatalf("expected 50 chars, got %d", len(got))
	}
}

func TestTruncate_RuneAware(t *testing.T) {
	got := Truncate("ççççç", 3)
	if got != "ççç" {
		t.Fatalf("expected 3 runes, got %q", got)
	}
	if Truncate("abc", 0) != "abc" {
		t.Fatalf("max 0 must not truncate")
	}
}

func TestNormalize_TitleMinimum(t *testing.T) {
	_, err := CaseTitle.Normalize("abc")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Message != "Título deve ter no mínimo 5 caracteres." {
		t.Fatalf("unexpected message %q", ve.Message)
	}
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation kind")
	}

	got, err := CaseTitle.Normalize("abcde")
	if err != nil || got != "abcde" {
		t.Fatalf("expected 5-char title accepted, got %q err=%v", got, err)
	}
}

func TestNormalize_DescriptionTruncatedThenAccepted(t *testing.T) {
	got, err := CaseDescription.Normalize(strings.Repeat("d", 2100))
	if err != nil {
		t.Fatalf("expected accepted, got %v", err)
	}
	if len(got) != 2000 {
		t.Fatalf("expected 2000 chars, got %d", len(got))
	}
}

func TestCheck_RejectsOverMax(t *testing.T) {
	if err := ProposalMessage.Check(strings.Repeat("m", 1001)); err == nil {
		t.Fatalf("expected error for 1001 chars")
	}
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  User@Example.com ")
	if err != nil || got != "user@example.com" {
		t.Fatalf("unexpected %q %v", got, err)
	}
	if _, err := NormalizeEmail(""); err == nil {
		t.Fatalf("expected empty email rejected")
	}
	if _, err := NormalizeEmail("Name <a@b.com>"); err == nil {
		t.Fatalf("expected display-name form rejected")
	}
}

func TestNormalizeOAB(t *testing.T) {
	if _, err := NormalizeOAB("1"); err == nil {
		t.Fatalf("expected short OAB rejected")
	}
	got, err := NormalizeOAB("123456/sp")
	if err != nil || got != "123456/SP" {
		t.Fatalf("unexpected %q %v", got, err)
	}
}
