package core

import "testing"

func TestCleanString(t *testing.T) {
	tests := []struct {
		in    string
		lower bool
		want  string
	}{
		{in: "  hello  ", want: "hello"},
		{in: "\tHello World\n", want: "Hello World"},
		{in: " ADA@Test.CD ", lower: true, want: "ada@test.cd"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := CleanString(tt.in, tt.lower); got != tt.want {
			t.Errorf("CleanString(%q, %v) = %q; want %q", tt.in, tt.lower, got, tt.want)
		}
	}
}
