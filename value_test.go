package sigma

import "testing"

func TestValueEqual_CrossTagNumeric(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int==uint same magnitude", Int(5), UInt(5), true},
		{"int==float exact", Int(3), Float(3.0), true},
		{"int!=float inexact", Int(3), Float(3.5), false},
		{"uint==float exact", UInt(7), Float(7.0), true},
		{"negative int != uint", Int(-1), UInt(1), false},
		{"string != int", Str("5"), Int(5), false},
		{"null == null", Null(), Null(), true},
		{"null != int zero", Null(), Int(0), false},
		{"bool==bool", Bool(true), Bool(true), true},
		{"bool!=int", Bool(true), Int(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%#v.Equal(%#v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal not symmetric for %#v, %#v", tt.a, tt.b)
			}
		})
	}
}

func TestValueCompare(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Value
		want    int
		wantOK  bool
	}{
		{"int lt int", Int(1), Int(2), -1, true},
		{"float gt int", Float(5.5), Int(5), 1, true},
		{"string lt string", Str("a"), Str("b"), -1, true},
		{"incomparable kinds", Str("a"), Int(1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.Compare(tt.b)
			if ok != tt.wantOK {
				t.Fatalf("Compare ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && sign(got) != sign(tt.want) {
				t.Errorf("Compare = %d, want same sign as %d", got, tt.want)
			}
		})
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func TestValueFromAny_IntegralFloatBecomesInt(t *testing.T) {
	v := ValueFromAny(float64(3))
	if v.Kind() != KindInt {
		t.Fatalf("expected KindInt for a lossless integral float64, got %v", v.Kind())
	}
}

func TestValueFromAny_FractionalFloatStaysFloat(t *testing.T) {
	v := ValueFromAny(float64(3.5))
	if v.Kind() != KindFloat {
		t.Fatalf("expected KindFloat for a fractional float64, got %v", v.Kind())
	}
}

func TestOrderedMap_PreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	m.Set("m", Int(3))

	want := []string{"z", "a", "m"}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
