package csl

import "testing"

func TestNewName(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantFamily string
		wantGiven  *string
		wantFull   bool
	}{
		{"family and given", "Blachly, James S", "Blachly", ptr("James S"), true},
		{"surrounding whitespace", "  Gregory ,  Charles Thomas ", "Gregory", ptr("Charles Thomas"), true},
		{"no comma", "Blachly JS", "Blachly JS", nil, false},
		{"no comma trimmed", "  Smith J  ", "Smith J", nil, false},
		{"two commas kept whole", "Smith, John, Jr.", "Smith, John, Jr.", nil, false},
		{"empty", "", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewName("author", tt.raw)
			if n.Key != "author" {
				t.Errorf("Key = %q, want author", n.Key)
			}
			if got := n.Parts.FamilyString(); got != tt.wantFamily {
				t.Errorf("Family = %q, want %q", got, tt.wantFamily)
			}
			if (n.Parts.Given == nil) != (tt.wantGiven == nil) {
				t.Fatalf("Given = %v, want %v", n.Parts.Given, tt.wantGiven)
			}
			if tt.wantGiven != nil && *n.Parts.Given != *tt.wantGiven {
				t.Errorf("Given = %q, want %q", *n.Parts.Given, *tt.wantGiven)
			}
			if n.Full != tt.wantFull {
				t.Errorf("Full = %v, want %v", n.Full, tt.wantFull)
			}
		})
	}
}

func TestAmbiguous(t *testing.T) {
	if Ambiguous("Smith, John") {
		t.Error("Ambiguous() = true for one comma")
	}
	if !Ambiguous("Smith, John, Jr.") {
		t.Error("Ambiguous() = false for two commas")
	}
}

func TestFamilyToken(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Smith, John", "Smith"},
		{"Smith J", "Smith"},
		{"van der Berg, Anna", "van"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NewName("author", tt.raw).FamilyToken(); got != tt.want {
			t.Errorf("FamilyToken(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNamePartsIsEmpty(t *testing.T) {
	if !(NameParts{}).IsEmpty() {
		t.Error("zero NameParts should be empty")
	}
	if (NameParts{Literal: ptr("WHO")}).IsEmpty() {
		t.Error("NameParts with literal should not be empty")
	}
}
