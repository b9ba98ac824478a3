package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auditkit/auditkit/pkg/types"
)

func TestCollectSecurity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			// Observatory analyze endpoint.
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"grade": "B+", "score": 80}`))
			return
		}
		// HEAD probe of the page itself.
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res := testClient(srv).CollectSecurity(context.Background(), srv.URL)

	if res.Status != types.StatusOK {
		t.Fatalf("Status: got %q (%s), want ok", res.Status, res.Error)
	}
	d := res.Data

	if d.Grade != "B+" {
		t.Errorf("Grade: got %q, want B+", d.Grade)
	}
	if d.Headers.CSP == "" || d.Headers.HSTS == "" {
		t.Errorf("Headers: CSP=%q HSTS=%q, want both set", d.Headers.CSP, d.Headers.HSTS)
	}

	// Missing must list absent headers in probe order. X-Frame-Options
	// counts as missing here because the CSP has no frame-ancestors.
	want := []string{"X-Frame-Options", "Referrer-Policy", "Permissions-Policy"}
	if len(d.Missing) != len(want) {
		t.Fatalf("Missing: got %v, want %v", d.Missing, want)
	}
	for i, name := range want {
		if d.Missing[i] != name {
			t.Errorf("Missing[%d]: got %q, want %q", i, d.Missing[i], name)
		}
	}

	// httptest serves plain http.
	if d.SSLValid {
		t.Error("SSLValid: got true for http URL, want false")
	}
}

func TestCollectSecurity_FrameAncestorsCoversXFO(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"grade": "A"}`))
			return
		}
		w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
	}))
	defer srv.Close()

	res := testClient(srv).CollectSecurity(context.Background(), srv.URL)

	for _, name := range res.Data.Missing {
		if name == "X-Frame-Options" {
			t.Error("Missing: X-Frame-Options must be covered by frame-ancestors")
		}
	}
}

func TestCollectSecurity_ObservatoryDownStillSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
	}))
	defer srv.Close()

	res := testClient(srv).CollectSecurity(context.Background(), srv.URL)

	if res.Status != types.StatusOK {
		t.Fatalf("Status: got %q, want ok", res.Status)
	}
	if res.Data.Grade != "" {
		t.Errorf("Grade: got %q, want empty when Observatory is down", res.Data.Grade)
	}
}

func TestCollectSecurity_InvalidURL(t *testing.T) {
	res := New().CollectSecurity(context.Background(), "://not-a-url")

	if res.Status != types.StatusError {
		t.Fatalf("Status: got %q, want error", res.Status)
	}
	if res.Error != "invalid URL" {
		t.Errorf("Error: got %q, want invalid URL", res.Error)
	}
}

func TestMissingHeaders_AllPresent(t *testing.T) {
	missing := missingHeaders(types.SecurityHeaders{
		CSP:                 "default-src 'self'",
		HSTS:                "max-age=63072000",
		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
		PermissionsPolicy:   "geolocation=()",
	})
	if len(missing) != 0 {
		t.Errorf("missingHeaders: got %v, want none", missing)
	}
}
