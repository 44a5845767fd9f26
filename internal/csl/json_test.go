package csl

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestItemMarshalJSON(t *testing.T) {
	item := Item{
		ID: "abc",
		Fields: []Ordinary{
			{Key: "note", Value: "PMID: 12345"},
			{Key: "id", Value: "must-not-appear"},
			{Key: "title", Value: "A <b>bold</b> title"},
			{Key: "note", Value: "PMCID: PMC1"},
			{Key: "title", Value: "second title dropped"},
		},
		Names: []Name{
			NewName("author", "Blachly, James S"),
			NewName("editor", "Doe J"),
			NewName("author", "Gregory, Charles Thomas"),
			{Key: "translator"},
		},
		Dates: []Date{
			NewRawDate("issued", "2019 Mar"),
			{Key: "accessed"},
		},
	}

	got, err := item.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	want := `{"id":"abc",` +
		`"note":"PMID: 12345\nPMCID: PMC1",` +
		`"title":"A <b>bold</b> title",` +
		`"author":[{"family":"Blachly","given":"James S"},{"family":"Gregory","given":"Charles Thomas"}],` +
		`"editor":[{"family":"Doe J"}],` +
		`"issued":{"raw":"2019 Mar"}}`
	if string(got) != want {
		t.Errorf("MarshalJSON() =\n%s\nwant\n%s", got, want)
	}
}

func TestItemJSONRoundTrip(t *testing.T) {
	item := Item{
		ID:     "abc",
		Fields: []Ordinary{{Key: "title", Value: "T"}, {Key: "DOI", Value: "10.1/x"}},
		Names:  []Name{NewName("author", "Smith, John"), NewName("author", "Doe J")},
		Dates:  []Date{NewRawDate("issued", "2020")},
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back Item
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if back.ID != "abc" {
		t.Errorf("ID = %q, want abc", back.ID)
	}
	if len(back.Fields) != 2 || back.Fields[1].Key != "DOI" || back.Fields[1].Value != "10.1/x" {
		t.Errorf("Fields = %+v", back.Fields)
	}
	if len(back.Names) != 2 {
		t.Fatalf("Names = %+v, want 2", back.Names)
	}
	if !back.Names[0].Full || back.Names[1].Full {
		t.Errorf("Full flags = %v, %v, want true, false", back.Names[0].Full, back.Names[1].Full)
	}
	if dp, ok := back.Date("issued"); !ok || dp.RawString() != "2020" {
		t.Errorf("issued = %+v", dp)
	}

	again, err := json.Marshal(back)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("round trip changed encoding:\n%s\n%s", data, again)
	}
}

func TestItemUnmarshalJSON_Scalars(t *testing.T) {
	var item Item
	if err := json.Unmarshal([]byte(`{"id": 7, "volume": 12, "note": null}`), &item); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if item.ID != "7" {
		t.Errorf("ID = %q, want 7", item.ID)
	}
	if v, _ := item.Value("volume"); v != "12" {
		t.Errorf("volume = %q, want 12", v)
	}
	if _, ok := item.Value("note"); ok {
		t.Error("null note should be skipped")
	}
}

func TestItemUnmarshalJSON_NotObject(t *testing.T) {
	var item Item
	if err := json.Unmarshal([]byte(`["a"]`), &item); err == nil {
		t.Error("Unmarshal() expected error for array")
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil, false); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("Encode(nil) = %q, want []", buf.String())
	}

	buf.Reset()
	items := []Item{{ID: "a"}, {ID: "b", Fields: []Ordinary{{Key: "title", Value: "T"}}}}
	if err := Encode(&buf, items, true); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "[\n  {\n    \"id\": \"a\"\n  },") {
		t.Errorf("Encode() indent mismatch:\n%s", out)
	}
	if !strings.Contains(out, `"title": "T"`) {
		t.Errorf("Encode() missing title:\n%s", out)
	}
}
