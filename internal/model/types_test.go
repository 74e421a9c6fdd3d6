package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestActivityPayloadUnmarshalKeepsUnknownKeys(t *testing.T) {
	raw := `{
		"start_time": "2023-01-01T10:00:00Z",
		"end_time": "2023-01-01T10:05:00Z",
		"executable_name": "chrome",
		"browser_url": "https://example.com",
		"ip_address": "10.0.0.1",
		"mac_address": "aa:bb:cc:dd:ee:ff",
		"idle_activity": true,
		"window_title": "Example",
		"cpu_load": 0.42
	}`

	var p ActivityPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if p.ExecutableName != "chrome" {
		t.Fatalf("expected chrome, got %q", p.ExecutableName)
	}
	if p.BrowserURL == nil || *p.BrowserURL != "https://example.com" {
		t.Fatalf("unexpected browser_url: %v", p.BrowserURL)
	}
	if !p.IdleActivity {
		t.Fatal("expected idle_activity true")
	}
	if len(p.Extra) != 2 {
		t.Fatalf("expected 2 extra keys, got %v", p.Extra)
	}
	if p.Extra["window_title"] != "Example" {
		t.Fatalf("unexpected extra window_title: %v", p.Extra["window_title"])
	}
	if _, known := p.Extra["executable_name"]; known {
		t.Fatal("known keys must not leak into Extra")
	}
}

func TestActivityPayloadUnmarshalRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`"text"`, `42`, `[1,2,3]`} {
		var p ActivityPayload
		if err := json.Unmarshal([]byte(raw), &p); !errors.Is(err, ErrValidation) {
			t.Fatalf("input %s: expected ErrValidation, got %v", raw, err)
		}
	}
}

func TestActivityPayloadValidate(t *testing.T) {
	valid := ActivityPayload{
		StartTime:      time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2023, 1, 1, 10, 5, 0, 0, time.UTC),
		ExecutableName: "chrome",
		IPAddress:      "10.0.0.1",
		MACAddress:     "aa:bb:cc:dd:ee:ff",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(p *ActivityPayload)
	}{
		{"missing start_time", func(p *ActivityPayload) { p.StartTime = time.Time{} }},
		{"missing end_time", func(p *ActivityPayload) { p.EndTime = time.Time{} }},
		{"missing executable_name", func(p *ActivityPayload) { p.ExecutableName = "" }},
		{"missing ip_address", func(p *ActivityPayload) { p.IPAddress = "" }},
		{"missing mac_address", func(p *ActivityPayload) { p.MACAddress = "" }},
	}
	for _, tc := range cases {
		p := valid
		tc.mutate(&p)
		if err := p.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestActivityPayloadBuildsOwnedRecord(t *testing.T) {
	p := ActivityPayload{
		StartTime:      time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2023, 1, 1, 10, 5, 0, 0, time.UTC),
		ExecutableName: "chrome",
		IPAddress:      "10.0.0.1",
		MACAddress:     "aa:bb:cc:dd:ee:ff",
		Extra:          map[string]interface{}{"cpu_load": 0.42},
	}
	a := p.Activity("user-7")
	if a.UserID != "user-7" {
		t.Fatalf("expected owner user-7, got %q", a.UserID)
	}
	if a.ActivityID != "" {
		t.Fatal("identifier assignment belongs to the store")
	}
	if a.Extra["cpu_load"] != 0.42 {
		t.Fatalf("extra data lost: %v", a.Extra)
	}
}
