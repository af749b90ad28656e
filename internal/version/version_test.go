package version

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    Parsed
		wantErr bool
	}{
		{"1.2.3", Parsed{1, 2, 3}, false},
		{"1.2", Parsed{1, 2, 0}, false},
		{"1", Parsed{}, true},
		{"a.2.3", Parsed{}, true},
		{"1.b.3", Parsed{}, true},
		{"1.2.c", Parsed{}, true},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %+v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestCompatibleWithReceipt(t *testing.T) {
	cases := []struct {
		receipt, running string
		want             bool
	}{
		{"0.1.0", "0.1.0", true},
		{"0.1.0", "0.1.5", true},
		{"0.1.5", "0.1.0", true},
		{"0.1.0", "0.2.0", false},
		{"1.0.0", "0.1.0", false},
	}
	for _, c := range cases {
		got, err := CompatibleWithReceipt(c.receipt, c.running)
		if err != nil {
			t.Fatalf("CompatibleWithReceipt(%q, %q): unexpected error %v", c.receipt, c.running, err)
		}
		if got != c.want {
			t.Errorf("CompatibleWithReceipt(%q, %q) = %v, want %v", c.receipt, c.running, got, c.want)
		}
	}
}

func TestCompatibleWithReceiptRejectsMalformedVersion(t *testing.T) {
	if _, err := CompatibleWithReceipt("not-a-version", Current); err == nil {
		t.Fatal("expected an error for a malformed receipt version")
	}
}
