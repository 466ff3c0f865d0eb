package ebisu

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindUnknown},
		{errors.New("other"), KindUnknown},
		{ErrInvalidArgument, KindInvalidArgument},
		{invalidArgf("x = %d", 1), KindInvalidArgument},
		{breakdownf("bad"), KindNumericalBreakdown},
		{&ConvergenceError{Op: "refine"}, KindNonConvergence},
		{fmt.Errorf("quiz 3: %w", &ConvergenceError{Op: "bracket"}), KindNonConvergence},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindUnknown, "Unknown"},
		{KindInvalidArgument, "InvalidArgument"},
		{KindNumericalBreakdown, "NumericalBreakdown"},
		{KindNonConvergence, "NonConvergence"},
		{Kind(9), "Kind(9)"},
		{Kind(-1), "Kind(-1)"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.k), got, tt.want)
		}
	}
}

func TestKindTextRoundTrip(t *testing.T) {
	for k := KindUnknown; k <= KindNonConvergence; k++ {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("%v.MarshalText: %v", k, err)
		}
		var got Kind
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != k {
			t.Errorf("round trip %v -> %v", k, got)
		}
	}
}

func TestKindTextInvalid(t *testing.T) {
	if _, err := Kind(7).MarshalText(); err == nil {
		t.Error("MarshalText(Kind(7)) should fail")
	}
	var k Kind
	if err := k.UnmarshalText([]byte("Breakdown")); err == nil {
		t.Error("UnmarshalText(Breakdown) should fail")
	}
}

func TestKindJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Kind{"kind": KindNonConvergence})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"kind":"NonConvergence"}` {
		t.Errorf("json = %s", data)
	}
}
