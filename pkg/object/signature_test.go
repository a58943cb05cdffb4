package object

import "testing"

func TestParseSignature(t *testing.T) {
	sig, ok := ParseSignature("Ada Lovelace <ada@example.com> 1700000000 +0130")
	if !ok {
		t.Fatal("ParseSignature returned !ok")
	}
	if sig.Name != "Ada Lovelace" || sig.Email != "ada@example.com" {
		t.Fatalf("identity = %q <%q>", sig.Name, sig.Email)
	}
	if sig.When.Unix() != 1700000000 {
		t.Fatalf("When = %v", sig.When)
	}
	if _, off := sig.When.Zone(); off != 90*60 {
		t.Fatalf("zone offset = %d, want %d", off, 90*60)
	}
	if got := sig.String(); got != "Ada Lovelace <ada@example.com> 1700000000 +0130" {
		t.Fatalf("String = %q", got)
	}
}

func TestParseSignatureLenient(t *testing.T) {
	for _, in := range []string{
		"",
		"Me",
		"Me <me@x>",
		"Me <me@x> notanumber +0000",
		"Me <me@x> 17 0000",
	} {
		if _, ok := ParseSignature(in); ok {
			t.Errorf("ParseSignature(%q) = ok, want !ok", in)
		}
	}
}
