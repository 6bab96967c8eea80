package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false}, // rounds down
		{"12.346", 1235, false}, // rounds up
		{"0", 0, false},
		{"0.00", 0, false},
		{"7", 700, false},
		{".5", 50, false},
		{"", 0, true},
		{"-1", 0, true},
		{"+1", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDecimalToCents(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDecimalToCents(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1500}
	b := Money{Cents: 2500}
	if got := a.Add(b).Cents; got != 4000 {
		t.Errorf("Add = %d, want 4000", got)
	}
	if got := a.Sub(b).Cents; got != -1000 {
		t.Errorf("Sub = %d, want -1000", got)
	}
	if got := a.Mul(3).Cents; got != 4500 {
		t.Errorf("Mul = %d, want 4500", got)
	}
}
