package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/hexstorm/internal/pattern"
)

func TestFind(t *testing.T) {
	s := New(WithContent([]byte("\x89PNG\r\n\x1a\nPNG\x00PNG")))

	tests := []struct {
		name string
		expr string
		from int
		dir  Direction
		want int
	}{
		{"forward from start", "PNG", 0, Forward, 1},
		{"forward at match", "PNG", 1, Forward, 1},
		{"forward past first", "PNG", 2, Forward, 8},
		{"hex escape", `\x00PNG`, 0, Forward, 11},
		{"backward from end", "PNG", 15, Backward, 12},
		{"backward strictly before", "PNG", 12, Backward, 8},
		{"backward to first", "PNG", 2, Backward, 1},
		{"escaped bytes", `\x0d\x0a\x1a`, 0, Forward, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Find(tt.expr, tt.from, tt.dir)
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Find(%q, %d, %v) = %d, want %d", tt.expr, tt.from, tt.dir, got, tt.want)
			}
		})
	}
}

func TestFindNoMatch(t *testing.T) {
	s := New(WithContent([]byte("abcabc")))

	if _, err := s.Find("abd", 0, Forward); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
	if _, err := s.Find("abc", 4, Forward); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch past last match, got %v", err)
	}
	if _, err := s.Find("abc", 0, Backward); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch before offset 0, got %v", err)
	}
}

func TestFindErrors(t *testing.T) {
	s := New(WithContent([]byte("abc")))

	_, err := s.Find(`ab\q`, 0, Forward)
	var serr *pattern.SyntaxError
	if !errors.As(err, &serr) || !errors.Is(err, pattern.ErrInvalidEscape) {
		t.Errorf("expected invalid escape SyntaxError, got %v", err)
	}

	if _, err := s.Find("", 0, Forward); !errors.Is(err, ErrEmptyPattern) {
		t.Errorf("expected ErrEmptyPattern, got %v", err)
	}
	if _, err := s.Find("a", 4, Forward); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if _, err := s.Find("a", 0, Direction(7)); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestFindAll(t *testing.T) {
	s := New(WithContent([]byte("aaaa\xffaa")))

	got, err := s.FindAll("aa")
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if want := []int{0, 2, 5}; !reflect.DeepEqual(got, want) {
		t.Errorf("FindAll(aa) = %v, want %v", got, want)
	}

	got, err = s.FindAll(`\xfe`)
	if err != nil || len(got) != 0 {
		t.Errorf("FindAll(fe) = %v, %v; want no matches", got, err)
	}
}

func TestFindAfterEdit(t *testing.T) {
	s := New(WithContent([]byte{0x00, 0x01, 0x02}))
	s.ReplaceByte(2, 0x01)

	got, err := s.Find(`\x01`, 0, Backward)
	if err == nil {
		t.Fatalf("Find from 0 backward = %d, want ErrNoMatch", got)
	}
	got, err = s.Find(`\x01`, s.Len(), Backward)
	if err != nil || got != 2 {
		t.Errorf("Find backward = %d, %v; want 2", got, err)
	}
}

func TestDirectionString(t *testing.T) {
	if Forward.String() != "forward" || Backward.String() != "backward" || Direction(9).String() != "unknown" {
		t.Error("unexpected direction names")
	}
}
