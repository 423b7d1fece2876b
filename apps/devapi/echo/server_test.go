package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	emailsvc "github.com/trezcool/darasa/services/email"
	testutil "github.com/trezcool/darasa/tests"
)

var errMissingToken = []byte(`{"success": false, "message": "missing or malformed jwt"}`)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	conf := testutil.NewConfig("http://localhost/api")
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	return NewServer(ServerDeps{
		Conf:       conf,
		Logger:     testutil.NopLogger{},
		EmailSvc:   emailsvc.NewConsoleServiceMock(conf),
		Validate:   validate,
		Translator: translator,
	})
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func createAccount(t *testing.T, s *Server, name, email, pwd, role string) Account {
	t.Helper()
	acct := Account{Name: name, Email: email, Role: role, Theme: "light", Currency: "USD"}
	if err := acct.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	acct, err := s.db.CreateAccount(acct)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acct
}

func getToken(t *testing.T, s *Server, acct Account) string {
	t.Helper()
	token, err := s.generateToken(s.getAccountClaims(acct))
	if err != nil {
		t.Fatalf("generateToken() failed: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response failed: %v\n%s", err, rec.Body.String())
	}
	return body
}

// Darasa clients set a bare multipart content type on JSON payloads; the
// server must still bind them.
func Test_jsonFallbackBinder(t *testing.T) {
	s := newTestServer(t)
	createAccount(t, s, "Ada", "ada@test.cd", "s3cret", "student")

	t.Run("JSON body under a bare multipart content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email": "ada@test.cd", "password": "s3cret"}`))
		req.Header.Set("Content-Type", "multipart/form-data")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want 200\n%s", rec.Code, rec.Body.String())
		}
		if body := decodeBody(t, rec); body["success"] != true {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("malformed JSON still rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "multipart/form-data")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d; want 400", rec.Code)
		}
	})

}

func Test_authApi_register(t *testing.T) {
	s := newTestServer(t)
	sentBefore := len(emailsvc.SentMessages)

	payload := []byte(`{
		"name": "Ada",
		"email": "ada@test.cd",
		"password": "s3cret",
		"password_confirm": "s3cret"
	}`)
	req, rec := newRequest(http.MethodPost, "/api/register", payload)
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; want 201\n%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["token"] == "" {
		t.Errorf("body = %v", body)
	}
	usr := body["user"].(map[string]interface{})
	if usr["role"] != "student" {
		t.Errorf("default role = %v; want student", usr["role"])
	}
	if _, ok := usr["password_hash"]; ok {
		t.Error("password hash leaked in response")
	}
	if len(emailsvc.SentMessages) != sentBefore+1 {
		t.Error("no welcome email sent")
	}

	// duplicate email
	req, rec = newRequest(http.MethodPost, "/api/register", payload)
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate email code = %d; want 400", rec.Code)
	}

	// short password
	req, rec = newRequest(http.MethodPost, "/api/register", []byte(`{
		"name": "Bob", "email": "bob@test.cd", "password": "abc", "password_confirm": "abc"
	}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short password code = %d; want 400", rec.Code)
	}

	// special characters in name
	req, rec = newRequest(http.MethodPost, "/api/register", []byte(`{
		"name": "Bob<script>", "email": "bob@test.cd", "password": "s3cret", "password_confirm": "s3cret"
	}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("special characters code = %d; want 400", rec.Code)
	}
}

func Test_authApi_login(t *testing.T) {
	s := newTestServer(t)
	createAccount(t, s, "Ada", "ada@test.cd", "s3cret", "instructor")

	tests := []struct {
		name        string
		body        string
		wantCode    int
		wantSuccess bool
		wantMsg     string
	}{
		{
			name:        "ok",
			body:        `{"email": "ada@test.cd", "password": "s3cret"}`,
			wantCode:    http.StatusOK,
			wantSuccess: true,
			wantMsg:     "logged in",
		},
		{
			name:     "wrong password",
			body:     `{"email": "ada@test.cd", "password": "nope"}`,
			wantCode: http.StatusOK,
			wantMsg:  "invalid credentials",
		},
		{
			name:     "unknown account",
			body:     `{"email": "ghost@test.cd", "password": "s3cret"}`,
			wantCode: http.StatusOK,
			wantMsg:  "invalid credentials",
		},
		{
			name:     "invalid payload",
			body:     `{"email": "not-an-email"}`,
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/login", []byte(tt.body))
			s.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d; want %d\n%s", rec.Code, tt.wantCode, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if body["success"] != tt.wantSuccess {
				t.Errorf("success = %v; want %v", body["success"], tt.wantSuccess)
			}
			if tt.wantMsg != "" && body["message"] != tt.wantMsg {
				t.Errorf("message = %v; want %q", body["message"], tt.wantMsg)
			}
			if tt.wantSuccess {
				if body["token"] == nil || body["token"] == "" {
					t.Error("no token in successful login")
				}
				usr := body["user"].(map[string]interface{})
				if usr["email"] != "ada@test.cd" || usr["role"] != "instructor" {
					t.Errorf("user = %v", usr)
				}
			}
		})
	}
}

func Test_authApi_logout(t *testing.T) {
	s := newTestServer(t)
	acct := createAccount(t, s, "Ada", "ada@test.cd", "s3cret", "student")

	req, rec := newRequest(http.MethodPost, "/api/logout")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated code = %d; want 401", rec.Code)
	}
	testutil.JSONBytesEqual(t, rec.Body.Bytes(), errMissingToken)

	req, rec = newAuthRequest(http.MethodPost, "/api/logout", getToken(t, s, acct))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("code = %d; want 200", rec.Code)
	}
	testutil.JSONBytesEqual(t, rec.Body.Bytes(), []byte(`{"success": true, "message": "logged out"}`))
}

func Test_authApi_toggleTheme(t *testing.T) {
	s := newTestServer(t)
	acct := createAccount(t, s, "Ada", "ada@test.cd", "s3cret", "student")
	token := getToken(t, s, acct)

	req, rec := newAuthRequest(http.MethodPost, "/api/toggle-theme", token, []byte(`{"theme": "dark"}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want 200\n%s", rec.Code, rec.Body.String())
	}
	testutil.JSONBytesEqual(t, rec.Body.Bytes(), []byte(`{"success": true, "message": "theme updated"}`))

	refreshed, err := s.db.GetAccountByID(acct.ID)
	if err != nil {
		t.Fatalf("GetAccountByID() failed: %v", err)
	}
	if refreshed.Theme != "dark" {
		t.Errorf("theme = %q; want dark", refreshed.Theme)
	}

	// invalid theme
	req, rec = newAuthRequest(http.MethodPost, "/api/toggle-theme", token, []byte(`{"theme": "pink"}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid theme code = %d; want 400", rec.Code)
	}
}

func Test_collectionApi(t *testing.T) {
	s := newTestServer(t)
	acct := createAccount(t, s, "Ada", "ada@test.cd", "s3cret", "instructor")
	token := getToken(t, s, acct)

	// auth required
	req, rec := newRequest(http.MethodGet, "/api/courses")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated code = %d; want 401", rec.Code)
	}

	// create
	req, rec = newAuthRequest(http.MethodPost, "/api/courses", token, []byte(`{"title": "Go 101", "price": 49.99}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d; want 201\n%s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)["data"].(map[string]interface{})
	id, _ := created["id"].(string)
	if id == "" || created["created_at"] == nil {
		t.Fatalf("created = %v", created)
	}

	// empty payload rejected
	req, rec = newAuthRequest(http.MethodPost, "/api/courses", token, []byte(`{}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty create code = %d; want 400", rec.Code)
	}

	// list under the collection-named key
	req, rec = newAuthRequest(http.MethodGet, "/api/courses", token)
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list code = %d; want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["total"] != float64(1) {
		t.Errorf("list body = %v", body)
	}
	courses := body["courses"].([]interface{})
	if len(courses) != 1 {
		t.Fatalf("len(courses) = %d; want 1", len(courses))
	}

	// pagination
	req, rec = newAuthRequest(http.MethodPost, "/api/courses", token, []byte(`{"title": "Go 201"}`))
	s.ServeHTTP(rec, req)
	req, rec = newAuthRequest(http.MethodGet, "/api/courses?current_page=2&per_page=1", token)
	s.ServeHTTP(rec, req)
	body = decodeBody(t, rec)
	if body["total"] != float64(2) {
		t.Errorf("total = %v; want 2", body["total"])
	}
	if courses = body["courses"].([]interface{}); len(courses) != 1 {
		t.Errorf("page len = %d; want 1", len(courses))
	}

	// retrieve
	req, rec = newAuthRequest(http.MethodGet, "/api/courses/"+id, token)
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("retrieve code = %d; want 200", rec.Code)
	}

	// update keeps id and created_at
	req, rec = newAuthRequest(http.MethodPut, "/api/courses/"+id, token, []byte(`{"id": "hacked", "title": "Go 102"}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update code = %d; want 200\n%s", rec.Code, rec.Body.String())
	}
	updated := decodeBody(t, rec)["data"].(map[string]interface{})
	if updated["id"] != id || updated["title"] != "Go 102" {
		t.Errorf("updated = %v", updated)
	}

	// destroy
	req, rec = newAuthRequest(http.MethodDelete, "/api/courses/"+id, token)
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("destroy code = %d; want 200", rec.Code)
	}
	req, rec = newAuthRequest(http.MethodGet, "/api/courses/"+id, token)
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("retrieve after destroy code = %d; want 404", rec.Code)
	}
}

func Test_accountApi_adminGate(t *testing.T) {
	s := newTestServer(t)
	student := createAccount(t, s, "Ada", "ada@test.cd", "s3cret", "student")
	admin := createAccount(t, s, "Root", "root@test.cd", "s3cret", "admin")

	req, rec := newAuthRequest(http.MethodGet, "/api/users", getToken(t, s, student))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student code = %d; want 403", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/users", getToken(t, s, admin))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin code = %d; want 200\n%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["total"] != float64(2) {
		t.Errorf("total = %v; want 2", body["total"])
	}
	if users := body["users"].([]interface{}); len(users) != 2 {
		t.Errorf("len(users) = %d; want 2", len(users))
	}
}

func Test_accountApi_update(t *testing.T) {
	s := newTestServer(t)
	student := createAccount(t, s, "Ada", "ada@test.cd", "s3cret", "student")
	admin := createAccount(t, s, "Root", "root@test.cd", "s3cret", "admin")
	token := getToken(t, s, admin)

	req, rec := newAuthRequest(http.MethodPut, "/api/users/"+student.ID, token, []byte(`{"role": "instructor", "theme": "dark"}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update code = %d; want 200\n%s", rec.Code, rec.Body.String())
	}

	refreshed, err := s.db.GetAccountByID(student.ID)
	if err != nil {
		t.Fatalf("GetAccountByID() failed: %v", err)
	}
	if refreshed.Role != "instructor" || refreshed.Theme != "dark" {
		t.Errorf("account = %+v", refreshed)
	}
	if refreshed.Name != "Ada" {
		t.Error("omitted field overwritten")
	}

	req, rec = newAuthRequest(http.MethodDelete, "/api/users/"+student.ID, token)
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("destroy code = %d; want 200", rec.Code)
	}
	if _, err = s.db.GetAccountByID(student.ID); err != errNotFound {
		t.Errorf("GetAccountByID() after destroy error = %v; want errNotFound", err)
	}
}
