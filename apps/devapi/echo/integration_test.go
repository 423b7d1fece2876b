package echoapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/restclient"
	inmemkv "github.com/trezcool/darasa/storage/keyvalue/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

// Drives the real client and session store against the real server over a
// live listener, default headers and all.
func Test_endToEnd(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	conf := testutil.NewConfig(srv.URL + "/api")
	client, err := restclient.New(conf, testutil.NopLogger{})
	if err != nil {
		t.Fatalf("restclient.New() failed: %v", err)
	}
	st := session.NewStore(inmemkv.Open(), client, testutil.NopLogger{}, conf)
	st.Init()

	ctx := context.Background()
	reg := session.Registration{
		Name:            "Ada",
		Email:           "ada@test.cd",
		Password:        "s3cret",
		PasswordConfirm: "s3cret",
	}

	// register
	res := st.Register(ctx, reg)
	if !res.Status || res.Type != session.TypeSuccess {
		t.Fatalf("Register() = %+v; want success", res)
	}
	if !st.LoggedIn() {
		t.Fatal("store not logged in after register")
	}
	if got := st.Current().Role; got != session.RoleUser {
		t.Errorf("role = %q; want %q", got, session.RoleUser)
	}

	// duplicate registration surfaces the server's field error as a warning
	res = st.Register(ctx, reg)
	if res.Status || res.Type != session.TypeWarning {
		t.Fatalf("duplicate Register() = %+v; want warning", res)
	}
	if !strings.Contains(res.Message, "email") {
		t.Errorf("warning %q does not carry the field error", res.Message)
	}

	// collection CRUD through the envelope
	course, err := client.Courses().Create(ctx, map[string]interface{}{"title": "Go 101", "price": 49.99})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if course.ID == "" || course.Title != "Go 101" {
		t.Errorf("course = %+v", course)
	}
	courses, total, err := client.Courses().Page(ctx, 1, 10, nil)
	if err != nil {
		t.Fatalf("Page() failed: %v", err)
	}
	if len(courses) != 1 || total != 1 {
		t.Errorf("courses = %+v, total = %d", courses, total)
	}

	// theme change reaches the server
	if ok := st.ChangeTheme(ctx, "dark"); !ok {
		t.Error("ChangeTheme() = false; want true")
	}

	// logout drops access to authed endpoints
	st.Logout()
	_, err = client.Courses().List(ctx, nil)
	apiErr, ok := restclient.IsAPIError(err)
	if !ok || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("List() after logout error = %v; want a 401 APIError", err)
	}

	// and logging back in restores it
	res = st.Login(ctx, session.Credentials{Email: reg.Email, Password: reg.Password})
	if !res.Status || res.Type != session.TypeSuccess {
		t.Fatalf("Login() = %+v; want success", res)
	}
	if _, _, err = client.Courses().Page(ctx, 1, 10, nil); err != nil {
		t.Errorf("Page() after login failed: %v", err)
	}
}
