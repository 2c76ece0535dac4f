package position

import (
	"testing"
)

func TestPosition(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		pos      Position
		isValid  bool
	}{
		{
			name:     "Valid position with filename",
			pos:      Position{Filename: "src/main.wj", Line: 10, Column: 5, Offset: 100},
			isValid:  true,
			expected: "main.wj:10:5",
		},
		{
			name:     "Valid position without filename",
			pos:      Position{Line: 1, Column: 1, Offset: 0},
			isValid:  true,
			expected: "1:1",
		},
		{
			name:    "Invalid position - zero line",
			pos:     Position{Line: 0, Column: 1},
			isValid: false,
		},
		{
			name:    "Invalid position - negative offset",
			pos:     Position{Line: 1, Column: 1, Offset: -1},
			isValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.IsValid(); got != tt.isValid {
				t.Errorf("IsValid() = %v, want %v", got, tt.isValid)
			}
			if tt.isValid {
				if got := tt.pos.String(); got != tt.expected {
					t.Errorf("String() = %q, want %q", got, tt.expected)
				}
			}
		})
	}
}

func TestSpanUnion(t *testing.T) {
	a := Span{
		Start: Position{Filename: "a.wj", Line: 1, Column: 1, Offset: 0},
		End:   Position{Filename: "a.wj", Line: 1, Column: 5, Offset: 4},
	}
	b := Span{
		Start: Position{Filename: "a.wj", Line: 2, Column: 1, Offset: 10},
		End:   Position{Filename: "a.wj", Line: 2, Column: 3, Offset: 12},
	}

	u := a.Union(b)
	if u.Start != a.Start || u.End != b.End {
		t.Fatalf("Union() = %v, want %v-%v", u, a.Start, b.End)
	}
	if got := u.String(); got != "a.wj:1:1-2:3" {
		t.Errorf("String() = %q", got)
	}

	if got := (Span{}).Union(b); got != b {
		t.Errorf("invalid receiver should yield other, got %v", got)
	}
}

func TestSourceFile(t *testing.T) {
	sf := NewSourceFile("x.wj", "fn main() {\r\n    go()\n}")

	if got := sf.GetLine(1); got != "fn main() {" {
		t.Errorf("GetLine(1) = %q", got)
	}
	if got := sf.GetLine(4); got != "" {
		t.Errorf("GetLine(4) = %q, want empty", got)
	}

	pos := sf.PositionFromOffset(17)
	if pos.Line != 2 || pos.Column != 5 {
		t.Errorf("PositionFromOffset(17) = %v, want 2:5", pos)
	}
	if pos := sf.PositionFromOffset(-1); pos.IsValid() {
		t.Errorf("negative offset should be invalid, got %v", pos)
	}
}
