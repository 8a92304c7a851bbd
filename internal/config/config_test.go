package config

import (
	"strings"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		wantPanic bool
	}{
		{name: "variable set", key: "NEARBY_TEST_VAR", value: "test_value"},
		{name: "variable not set", key: "NEARBY_TEST_VAR_MISSING", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{name: "empty", value: "", expected: nil},
		{name: "single value", value: "value1", expected: []string{"value1"}},
		{name: "spaces and quotes", value: ` "a" , 'b',, c `, expected: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.value)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() length = %v, want %v", len(result), len(tt.expected))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{name: "valid duration", key: "NEARBY_TEST_DURATION", value: "5s", def: time.Second, expected: 5 * time.Second},
		{name: "invalid duration uses default", key: "NEARBY_TEST_DURATION_INVALID", value: "invalid", def: 10 * time.Second, expected: 10 * time.Second},
		{name: "missing variable uses default", key: "NEARBY_TEST_DURATION_MISSING", def: 15 * time.Second, expected: 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}
			if got := mustDuration(tt.key, tt.def); got != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", value: "true", def: false, expected: true},
		{name: "false value", value: "false", def: true, expected: false},
		{name: "invalid value uses default", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("NEARBY_TEST_BOOL", tt.value)
			}
			if got := mustBool("NEARBY_TEST_BOOL", tt.def); got != tt.expected {
				t.Errorf("mustBool() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustFloat(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected float64
	}{
		{name: "valid", value: "3.5", expected: 3.5},
		{name: "negative uses default", value: "-1", expected: 2},
		{name: "garbage uses default", value: "abc", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NEARBY_TEST_FLOAT", tt.value)
			if got := mustFloat("NEARBY_TEST_FLOAT", 2); got != tt.expected {
				t.Errorf("mustFloat() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("NEARBY_GEMINI_API_KEY", "key-123")
	t.Setenv("NEARBY_ADMIN_PASSKEY", "letmein")
	t.Setenv("NEARBY_GEO_TIMEOUT", "2s")
	t.Setenv("NEARBY_ALLOWED_HOSTS", "nearby.local, api.nearby.local")

	cfg := Load()

	if cfg.GeminiAPIKey != "key-123" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
	if cfg.GeoTimeout != 2*time.Second {
		t.Errorf("GeoTimeout = %v, want 2s", cfg.GeoTimeout)
	}
	if cfg.RedisEnabled {
		t.Errorf("RedisEnabled should default to false")
	}
	if len(cfg.AllowedHosts) != 2 {
		t.Errorf("AllowedHosts = %v", cfg.AllowedHosts)
	}
}

func TestLoadPanicsWithoutAPIKey(t *testing.T) {
	t.Setenv("NEARBY_GEMINI_API_KEY", "")
	t.Setenv("NEARBY_ADMIN_PASSKEY", "letmein")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Load() should have panicked")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "NEARBY_GEMINI_API_KEY") {
			t.Errorf("unexpected panic: %v", r)
		}
	}()
	Load()
}

func TestRedacted(t *testing.T) {
	cfg := Config{GeminiAPIKey: "secret", AdminPasskey: "pass", RedisPassword: "pw"}
	r := cfg.Redacted()
	if r.GeminiAPIKey == "secret" || r.AdminPasskey == "pass" || r.RedisPassword == "pw" {
		t.Errorf("secrets leaked: %+v", r)
	}
	if cfg.GeminiAPIKey != "secret" {
		t.Errorf("Redacted must not mutate the receiver")
	}
}
