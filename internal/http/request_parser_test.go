package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestQueryParam(t *testing.T) {
	q := url.Values{"filter": {"  weekly "}, "blank": {"  "}}
	if got := QueryParam(q, "filter", "yearly"); got != "weekly" {
		t.Errorf("QueryParam(filter) = %q", got)
	}
	if got := QueryParam(q, "blank", "yearly"); got != "yearly" {
		t.Errorf("QueryParam(blank) = %q", got)
	}
	if got := QueryParam(q, "missing", "yearly"); got != "yearly" {
		t.Errorf("QueryParam(missing) = %q", got)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 10, false},
		{"5", 5, false},
		{"250", 100, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLimit(url.Values{"limit": {tt.raw}}, "limit", 10, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLimit(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecodeJSONTooLarge(t *testing.T) {
	body := `{"merchant":"` + strings.Repeat("a", maxJSONBodySize) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/receipts", strings.NewReader(body))
	var v map[string]string
	if err := DecodeJSON(httptest.NewRecorder(), req, &v); err != errBodyTooLarge {
		t.Fatalf("err = %v, want errBodyTooLarge", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Fresh\x00 Mart\t\n "); got != "Fresh Mart" {
		t.Errorf("sanitizeInput = %q", got)
	}
}

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusCreated).Header("Location", "/x").Body(map[string]int{"n": 1}).Write(rec)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/x" || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("headers = %v", rec.Header())
	}
	if strings.TrimSpace(rec.Body.String()) != `{"n":1}` {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewJSONResponse().Body(func() {}).Write(rec)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("unencodable body status = %d", rec.Code)
	}
}
