package validate

import "testing"

func TestEmail(t *testing.T) {
	valid := []string{"a@example.com", "first.last@sub.example.org"}
	for _, v := range valid {
		if err := Email(v); err != nil {
			t.Fatalf("%q rejected: %v", v, err)
		}
	}
	invalid := []string{"", "plain", "@example.com", "a@b", "two@@example.com", "has space@example.com"}
	for _, v := range invalid {
		if err := Email(v); err == nil {
			t.Fatalf("%q accepted", v)
		}
	}
}

func TestProjectTitle(t *testing.T) {
	valid := []string{"Tracker", "Team-1 Backend", "a_b"}
	for _, v := range valid {
		if err := ProjectTitle(v); err != nil {
			t.Fatalf("%q rejected: %v", v, err)
		}
	}
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	invalid := []string{"", string(long), "nope!", "drop;table"}
	for _, v := range invalid {
		if err := ProjectTitle(v); err == nil {
			t.Fatalf("%q accepted", v)
		}
	}
}

func TestRegister(t *testing.T) {
	if err := Register("a@example.com", "pw", "A", "B"); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	cases := [][4]string{
		{"", "pw", "A", "B"},
		{"a@example.com", "", "A", "B"},
		{"a@example.com", "pw", "", "B"},
		{"a@example.com", "pw", "A", ""},
	}
	for i, c := range cases {
		if err := Register(c[0], c[1], c[2], c[3]); err == nil {
			t.Fatalf("case %d accepted", i)
		}
	}
}
