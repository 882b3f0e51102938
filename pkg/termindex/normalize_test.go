package termindex

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Hyponatremia", "hyponatremia"},
		{"Iron-Deficiency Anemia", "irondeficiencyanemia"},
		{"  low   sodium ", "lowsodium"},
		{"Vitamin B12", "vitaminb12"},
		{"C. difficile", "cdifficile"},
		{"Édème", "édème"},
		{"α-thalassemia", "αthalassemia"},
		{"**bold**", "bold"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"Iron-Deficiency Anemia", "Édème", "ABC 123"} {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent on %q: %q then %q", s, once, twice)
		}
	}
}

func TestFoldAccents(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Édème", "Edeme"},
		{"naïve", "naive"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := foldAccents(tt.input); got != tt.want {
			t.Errorf("foldAccents(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
