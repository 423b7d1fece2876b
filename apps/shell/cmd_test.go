package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/restclient"
	inmemkv "github.com/trezcool/darasa/storage/keyvalue/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

func setup(t *testing.T, handler http.Handler) (*commandLine, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := testutil.NewConfig(srv.URL + "/api")
	client, err := restclient.New(conf, testutil.NopLogger{})
	if err != nil {
		t.Fatalf("restclient.New() failed: %v", err)
	}
	store := session.NewStore(inmemkv.Open(), client, testutil.NopLogger{}, conf)
	store.Init()

	out := new(bytes.Buffer)
	return &commandLine{store: store, out: out}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
	wantOut    string
}

func apiHandler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"message": "logged in",
			"token": "tok123",
			"user": {"id": "u1", "name": "Ada", "email": "ada@test.cd", "role": "instructor"}
		}`))
	})
	mux.HandleFunc("/api/toggle-theme", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "message": "theme updated"}`))
	})
	mux.HandleFunc("/api/courses", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"courses": [{"id": "c1", "title": "Go 101"}, {"id": "c2", "title": "Go 201"}],
			"total": 2
		}`))
	})
	return mux
}

func Test_commandLine_run(t *testing.T) {
	tests := []cliTest{
		{name: "no subcommand", wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "login: no email", args: []string{"login"}, wantErr: errHelp},
		{name: "login: empty password", args: []string{"login", "-email", "ada@test.cd"}, wantErr: errHelp},
		{name: "whoami: not logged in", args: []string{"whoami"}, wantErr: errNotLoggedIn},
		{name: "courses: not logged in", args: []string{"courses"}, wantErr: errNotLoggedIn},
		{name: "theme: no value", args: []string{"theme"}, wantErr: errHelp},
		{name: "theme", args: []string{"theme", "-set", "dark"}, wantOut: "theme updated"},
		{name: "logout when logged out", args: []string{"logout"}, wantOut: "logged out"},
	}
	for _, tt := range tests {
		cli, out := setup(t, apiHandler(t))
		args := append([]string{"shell"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantErrStr != "" {
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
				return
			}
			if err != nil {
				t.Fatalf("cli.run() unexpected error = %v", err)
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output %q does not contain %q", out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_loginFlow(t *testing.T) {
	cli, out := setup(t, apiHandler(t))

	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte("s3cret"), nil
	}

	if err := cli.run([]string{"shell", "login", "-email", "ada@test.cd"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !cli.store.LoggedIn() {
		t.Fatal("store not logged in after login command")
	}

	out.Reset()
	if err := cli.run([]string{"shell", "whoami"}); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "Ada <ada@test.cd> (instructor)") {
		t.Errorf("whoami output = %q", got)
	}

	out.Reset()
	if err := cli.run([]string{"shell", "courses", "-page", "1", "-size", "10"}); err != nil {
		t.Fatalf("courses failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Go 101") || !strings.Contains(got, "2 of 2 courses") {
		t.Errorf("courses output = %q", got)
	}

	if err := cli.run([]string{"shell", "logout"}); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if cli.store.LoggedIn() {
		t.Error("store still logged in after logout command")
	}
	if err := cli.run([]string{"shell", "whoami"}); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("whoami after logout error = %v; want errNotLoggedIn", err)
	}
}

func Test_commandLine_loginRejected(t *testing.T) {
	cli, _ := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "message": "invalid credentials"}`))
	}))

	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte("wrong"), nil
	}

	err := cli.run([]string{"shell", "login", "-email", "ada@test.cd"})
	if err == nil || err.Error() != "invalid credentials" {
		t.Errorf("cli.run() error = %v; want invalid credentials", err)
	}
	if cli.store.LoggedIn() {
		t.Error("store logged in after rejected login")
	}
}
