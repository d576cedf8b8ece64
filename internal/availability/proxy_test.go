package availability

import "testing"

func TestProxiesBaseFor(t *testing.T) {
	proxies := DefaultProxies()

	staging := []string{
		"localhost",
		"localhost:3000",
		"127.0.0.1",
		"127.0.0.1:8080",
		"deploy-preview-12--vaxxnz.netlify.app",
		"VAXXNZ.NETLIFY.APP",
	}
	for _, host := range staging {
		if got := proxies.BaseFor(host); got != DefaultStagingBase {
			t.Fatalf("BaseFor(%q) = %q, want staging", host, got)
		}
	}

	production := []string{
		"vaxx.nz",
		"www.vaxx.nz",
		"localhost.example.com",
		"netlify.app.example.com",
		"10.0.0.1",
		"",
	}
	for _, host := range production {
		if got := proxies.BaseFor(host); got != DefaultProductionBase {
			t.Fatalf("BaseFor(%q) = %q, want production", host, got)
		}
	}
}

func TestSlotsURLEscapesSegments(t *testing.T) {
	got := SlotsURL("https://moh.vaxx.nz/", "a b/c", "2026-10-19")
	want := "https://moh.vaxx.nz/public/locations/a%20b%2Fc/date/2026-10-19/slots"
	if got != want {
		t.Fatalf("SlotsURL = %q, want %q", got, want)
	}
}
