package commands

import (
	"errors"
	"math"
	"testing"
)

func TestEval(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"2 + 2 * 5", 12},
		{"2 * 3 + 4", 10},
		{"(2 + 3) * 4.5", 22.5},
		{"10 / 4", 2.5},
		{"1 + 2 + 3 + 4", 10},
		{"10 - 2 - 3", 5},
		{"100 / 10 / 2", 5},
		{"-4 + 6", 2},
		{"-(2 + 3)", -5},
		{"+7", 7},
		{"  42  ", 42},
		{"0.5 * 0.5", 0.25},
		{"((((1))))", 1},
		{"2*(3+(4-1))", 12},
	}

	for _, tt := range tests {
		got, err := Eval(tt.input)
		if err != nil {
			t.Errorf("Eval(%q) error: %v", tt.input, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Eval(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEval_InvalidExpressions(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"alert(1)",
		"2 + x",
		"1 +",
		"* 3",
		"(1 + 2",
		"1 + 2)",
		"1..2",
		"2 ** 3",
		"()",
	}

	for _, input := range inputs {
		_, err := Eval(input)
		if err == nil {
			t.Errorf("Eval(%q) expected error, got none", input)
			continue
		}
		if !errors.Is(err, ErrInvalidExpression) {
			t.Errorf("Eval(%q) expected ErrInvalidExpression, got %v", input, err)
		}
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	for _, input := range []string{"10 / 0", "1 / (2 - 2)"} {
		_, err := Eval(input)
		if !errors.Is(err, ErrEvaluation) {
			t.Errorf("Eval(%q) expected ErrEvaluation, got %v", input, err)
		}
	}
}

func TestEval_NonFiniteResult(t *testing.T) {
	// Large enough to overflow float64 via repeated multiplication.
	input := "9999999999999999999999999999999999999999999999999999999999999999"
	for i := 0; i < 6; i++ {
		input += " * 9999999999999999999999999999999999999999999999999999999999999999"
	}

	_, err := Eval(input)
	if !errors.Is(err, ErrEvaluation) {
		t.Errorf("expected ErrEvaluation for overflow, got %v", err)
	}
}
