package testutil

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/darasa/core"
)

// NewConfig returns a config suitable for tests: TEST mode, no debug
// logging, the given API base URL and short timeouts.
func NewConfig(apiBaseURL string) *core.Config {
	conf := &core.Config{
		TestMode:        true,
		Env:             "TEST",
		AppName:         "Darasa",
		DefaultTheme:    "light",
		DefaultCurrency: "USD",
	}
	conf.API.BaseURL = apiBaseURL
	conf.API.RequestTimeout = 5 * time.Second
	conf.API.PageSize = 10
	conf.Server.SecretKey = "secret"
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	return conf
}

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Debug(msg string, args ...interface{}) {}
func (NopLogger) Info(msg string, args ...interface{})  {}
func (NopLogger) Warn(msg string, args ...interface{})  {}
func (NopLogger) Error(msg string, args ...interface{}) {}
func (NopLogger) Fatal(msg string, args ...interface{}) {}

// JSONBytesEqual compares two JSON documents structurally and reports a
// unified diff of their pretty-printed forms on mismatch.
func JSONBytesEqual(t *testing.T, got, want []byte) {
	t.Helper()

	var j1, j2 interface{}
	if err := json.Unmarshal(got, &j1); err != nil {
		t.Fatalf("JSONBytesEqual() failed to parse got: %v\n%s", err, got)
	}
	if err := json.Unmarshal(want, &j2); err != nil {
		t.Fatalf("JSONBytesEqual() failed to parse want: %v\n%s", err, want)
	}
	if reflect.DeepEqual(j1, j2) {
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(indent(t, j1)),
		B:        difflib.SplitLines(indent(t, j2)),
		FromFile: "got",
		ToFile:   "want",
		Context:  2,
	})
	if err != nil {
		t.Fatalf("JSONBytesEqual() failed to diff: %v", err)
	}
	t.Errorf("unexpected JSON:\n%s", diff)
}

func indent(t *testing.T, obj interface{}) string {
	t.Helper()
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		t.Fatalf("indent() failed: %v", err)
	}
	return string(data)
}

// MarshalObj JSON-encodes obj, failing the test on error.
func MarshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("MarshalObj() failed: %v", err)
	}
	return data
}
