// ABOUTME: Tests for request decoding and client IP extraction.
// ABOUTME: Handler/database behavior is covered by integration deployments.
package main

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeUpsertRequest(t *testing.T) {
	body := `{"user_id":"u1","backup_id":"01ABC","params":{"type":"argon2id"},"ciphertext":"AAAA"}`
	r := httptest.NewRequest("PUT", "/v1/backup", strings.NewReader(body))

	req, err := decodeUpsertRequest(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.UserID != "u1" || req.BackupID != "01ABC" || req.CiphertextB64 != "AAAA" {
		t.Fatalf("unexpected request %+v", req)
	}
	if string(req.Params) != `{"type":"argon2id"}` {
		t.Fatalf("params must be stored verbatim, got %s", req.Params)
	}
}

func TestDecodeUpsertRequestRejectsMissingFields(t *testing.T) {
	cases := []string{
		`not json`,
		`{"user_id":"","params":{"a":1},"ciphertext":"AAAA"}`,
		`{"user_id":"u1","ciphertext":"AAAA"}`,
		`{"user_id":"u1","params":{"a":1},"ciphertext":""}`,
	}
	for _, body := range cases {
		r := httptest.NewRequest("PUT", "/v1/backup", strings.NewReader(body))
		if _, err := decodeUpsertRequest(r); err == nil {
			t.Fatalf("expected error for body %q", body)
		}
	}
}

func TestDecodeUpsertRequestRejectsOversizedBlob(t *testing.T) {
	big := strings.Repeat("A", maxCiphertextB64+1)
	body := `{"user_id":"u1","params":{"a":1},"ciphertext":"` + big + `"}`
	r := httptest.NewRequest("PUT", "/v1/backup", strings.NewReader(body))
	if _, err := decodeUpsertRequest(r); err == nil {
		t.Fatalf("expected error for oversized ciphertext")
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/backup", nil)
	r.RemoteAddr = "10.1.2.3:4444"
	if ip := getClientIP(r); ip != "10.1.2.3" {
		t.Fatalf("expected remote addr host, got %q", ip)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := getClientIP(r); ip != "203.0.113.9" {
		t.Fatalf("expected first forwarded hop, got %q", ip)
	}
}
