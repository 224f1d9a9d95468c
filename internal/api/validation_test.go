package api

import "testing"

func TestValidateEmailRegex(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"a@b.com", true},
		{"a+b@b.com.br", true},
		{"", false},
		{"   ", false},
		{"a@", false},
		{"@b.com", false},
		{"a@b", false},
		{"a b@c.com", false},
	}
	for _, c := range cases {
		err := ValidateEmailRegex(c.in)
		if (err == nil) != c.want {
			t.Fatalf("email=%q wantOk=%v gotErr=%v", c.in, c.want, err)
		}
	}
}

func TestNormalizeCPF(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"123.456.789-01", "12345678901", true},
		{"12345678901", "12345678901", true},
		{" 123.456.789-01 ", "12345678901", true},
		{"1234567890", "", false},
		{"123456789012", "", false},
		{"", "", false},
		{"abc", "", false},
	}
	for _, c := range cases {
		got, err := NormalizeCPF(c.in)
		if (err == nil) != c.wantOk {
			t.Fatalf("cpf=%q wantOk=%v gotErr=%v", c.in, c.wantOk, err)
		}
		if got != c.want {
			t.Fatalf("cpf=%q got=%q want=%q", c.in, got, c.want)
		}
	}
}

func TestValidateCEP(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"89200-000", "89200000", true},
		{"89200000", "89200000", true},
		{"8920000", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, err := ValidateCEP(c.in)
		if (err == nil) != c.wantOk {
			t.Fatalf("cep=%q wantOk=%v gotErr=%v", c.in, c.wantOk, err)
		}
		if got != c.want {
			t.Fatalf("cep=%q got=%q want=%q", c.in, got, c.want)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		in     string
		wantOk bool
	}{
		{"(47) 99999-9999", true},
		{"4732220000", true},
		{"47999999999", true},
		{"999999999", false},
		{"479999999999", false},
		{"", false},
	}
	for _, c := range cases {
		if _, err := ValidatePhone(c.in); (err == nil) != c.wantOk {
			t.Fatalf("phone=%q wantOk=%v gotErr=%v", c.in, c.wantOk, err)
		}
	}
}

func TestFormatDateBR(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-03-05", "05/03/2026"},
		{"2026-12-31", "31/12/2026"},
		{"", ""},
		{"31/12/2026", ""},
		{"2026-13-01", ""},
	}
	for _, c := range cases {
		if got := formatDateBR(c.in); got != c.want {
			t.Fatalf("formatDateBR(%q)=%q want %q", c.in, got, c.want)
		}
	}
}
