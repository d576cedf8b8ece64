package i18n

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestCollectKeysSkipsPrivateSubtrees(t *testing.T) {
	keys, err := CollectKeysFromJSON([]byte(`{"a":{"b":"x","_c":"y"},"d":"z"}`))
	if err != nil {
		t.Fatalf("CollectKeysFromJSON: %v", err)
	}
	if want := []string{"a.b", "d"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
}

func TestCollectKeysKeepsDocumentOrder(t *testing.T) {
	keys, err := CollectKeysFromJSON([]byte(`{"zeta": "1", "_hidden": {"inner": "skipped", "deeper": {"x": "skipped"}}, ` +
		`"alpha": {"nested": {"leaf": "2"}, "_note": "skipped", "beta": "3"}, "count": 4}`))
	if err != nil {
		t.Fatalf("CollectKeysFromJSON: %v", err)
	}
	want := []string{"zeta", "alpha.nested.leaf", "alpha.beta"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
}

func TestParseTreeRejectsNonObjects(t *testing.T) {
	if _, err := ParseTree([]byte(`["a","b"]`)); err == nil {
		t.Fatal("expected error for array document")
	}
}

func TestMissingKeys(t *testing.T) {
	got := MissingKeys([]string{"a", "b", "c"}, []string{"c", "a"})
	if want := []string{"b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("MissingKeys = %v, want %v", got, want)
	}
}

func TestEmbeddedBundle(t *testing.T) {
	bundle, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := bundle.T("en-NZ", "core.distanceAway", map[string]any{"distance": "2.3 km"}); got != "2.3 km away" {
		t.Fatalf("distanceAway = %q", got)
	}
	if got := bundle.T("mi-NZ", "core.makeABooking", nil); got != "Tāpui mai" {
		t.Fatalf("mi-NZ makeABooking = %q", got)
	}
	if got := bundle.T("mi-NZ", "core.changeOrCancelABooking", nil); got != "Change or cancel a booking" {
		t.Fatalf("mi-NZ fallback = %q", got)
	}
	if got := bundle.T("en-NZ", "does.not.exist", nil); got != "does.not.exist" {
		t.Fatalf("missing key = %q", got)
	}

	data, err := localesFS.ReadFile("locales/en-NZ/common.json")
	if err != nil {
		t.Fatalf("read en-NZ: %v", err)
	}
	keys, err := CollectKeysFromJSON(data)
	if err != nil {
		t.Fatalf("collect en-NZ keys: %v", err)
	}
	for _, key := range keys {
		if got := bundle.T("en-NZ", key, nil); got == key {
			t.Fatalf("key %q has no en-NZ message", key)
		}
	}
}

func TestBundleMatch(t *testing.T) {
	bundle, err := LoadFS(fstest.MapFS{
		"en-NZ/common.json": {Data: []byte(`{"hello":"Hello"}`)},
		"mi-NZ/common.json": {Data: []byte(`{"hello":"Kia ora"}`)},
	}, "en-NZ")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}

	tests := []struct {
		candidates []string
		want       string
	}{
		{candidates: nil, want: "en-NZ"},
		{candidates: []string{"", "mi-NZ"}, want: "mi-NZ"},
		{candidates: []string{"fr-FR"}, want: "en-NZ"},
		{candidates: []string{"mi-NZ,mi;q=0.9,en;q=0.5"}, want: "mi-NZ"},
		{candidates: []string{"not a locale!!", "en-NZ"}, want: "en-NZ"},
	}
	for _, tt := range tests {
		if got := bundle.Match(tt.candidates...); got != tt.want {
			t.Fatalf("Match(%v) = %q, want %q", tt.candidates, got, tt.want)
		}
	}
}

func TestLoadFSRequiresDefaultLocale(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{
		"mi-NZ/common.json": {Data: []byte(`{"hello":"Kia ora"}`)},
	}, "en-NZ")
	if err == nil {
		t.Fatal("expected error when the default locale is missing")
	}
}

func TestFormatSlotTime(t *testing.T) {
	tests := map[string]struct {
		input  string
		locale string
		want   string
	}{
		"english morning":   {input: "09:30:00", locale: "en-NZ", want: "9:30 am"},
		"english afternoon": {input: "14:05:00", locale: "en-NZ", want: "2:05 pm"},
		"maori":             {input: "12:00:00", locale: "mi-NZ", want: "12:00 pm"},
		"24 hour":           {input: "14:05:00", locale: "fr-FR", want: "14:05"},
		"unparseable":       {input: "soon", locale: "en-NZ", want: "soon"},
	}
	for name, tt := range tests {
		if got := FormatSlotTime(tt.input, tt.locale); got != tt.want {
			t.Fatalf("%s: FormatSlotTime(%q) = %q, want %q", name, tt.input, got, tt.want)
		}
	}
}

func TestFormatDistanceKm(t *testing.T) {
	if got := FormatDistanceKm(2.34, "en-NZ"); got != "2.3 km" {
		t.Fatalf("FormatDistanceKm(2.34) = %q", got)
	}
	if got := FormatDistanceKm(12.6, "en-NZ"); got != "13 km" {
		t.Fatalf("FormatDistanceKm(12.6) = %q", got)
	}
}
