package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	app "github.com/ethanscookies/storefront/internal/app"
	"github.com/ethanscookies/storefront/internal/app/domain/catalogue"
	"github.com/ethanscookies/storefront/internal/app/storage/memory"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	store := memory.New()
	store.SeedProducts([]catalogue.Product{
		{Shortname: "snickerdoodle", Name: "Snickerdoodle", Description: "chewy", Ingredients: "sugar batter,cinnamon", Price: 2},
		{Shortname: "doublechocolate", Name: "Double Chocolate", Description: "rich", Ingredients: "chocolate batter,chunks", Price: 2.75},
	})

	application, err := app.New(app.Stores{
		Catalogue: store,
		Users:     store,
		Orders:    store,
		Feedback:  store,
	}, nil)
	if err != nil {
		t.Fatalf("build application: %v", err)
	}
	return NewHandler(application, NewAuditLog(10, nil))
}

func doForm(handler http.Handler, method, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGetCatalogue(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/catalogue", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var mapping map[string]catalogue.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &mapping); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(mapping) != 2 {
		t.Errorf("expected 2 entries, got %d", len(mapping))
	}
	if mapping["Snickerdoodle"].Shortname != "snickerdoodle" {
		t.Errorf("unexpected entry: %+v", mapping["Snickerdoodle"])
	}
}

func TestGetCatalogueByBatter(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/catalogue/chocolate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var mapping map[string]catalogue.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &mapping); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(mapping) != 1 {
		t.Errorf("expected 1 filtered entry, got %v", mapping)
	}
}

func TestGetItem(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/item/snickerdoodle", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var detail catalogue.Detail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if detail.Name != "Snickerdoodle" {
		t.Errorf("unexpected detail: %+v", detail)
	}
}

func TestGetItemNotFound(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/item/lemon", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestPlaceOrderAndListOrders(t *testing.T) {
	handler := newTestHandler(t)

	form := url.Values{}
	form.Set("phone", "555-0100")
	form.Set("email", "e@example.com")
	form.Set("user", "ethan")
	form.Set("cart", `{"Snickerdoodle":{"price":2,"qty":3}}`)

	rec := doForm(handler, http.MethodPost, "/order", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Your Order Has Been Placed!" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/yourorders?username=ethan", nil)
	listRec := httptest.NewRecorder()
	handler.ServeHTTP(listRec, req)

	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listRec.Code)
	}
	var summaries []map[string]json.Number
	dec := json.NewDecoder(strings.NewReader(listRec.Body.String()))
	dec.UseNumber()
	if err := dec.Decode(&summaries); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 order, got %d", len(summaries))
	}
	if summaries[0]["Snickerdoodle"].String() != "3" {
		t.Errorf("expected quantity 3, got %v", summaries[0]["Snickerdoodle"])
	}
	if summaries[0]["total_price"].String() != "6" {
		t.Errorf("expected total 6, got %v", summaries[0]["total_price"])
	}
}

func TestPlaceOrderJSONBody(t *testing.T) {
	handler := newTestHandler(t)

	body := `{"phone":"555-0100","email":"e@example.com","cart":{"Snickerdoodle":{"price":2,"qty":1}}}`
	req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPlaceOrderMissingFields(t *testing.T) {
	handler := newTestHandler(t)

	form := url.Values{}
	form.Set("email", "e@example.com")

	rec := doForm(handler, http.MethodPost, "/order", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Body.String() != "Please input all required parameters" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestYourOrdersMissingUsername(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/yourorders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Body.String() != "Please enter a username" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestContact(t *testing.T) {
	handler := newTestHandler(t)

	form := url.Values{}
	form.Set("question", "Do you deliver?")
	form.Set("user", "ethan")

	rec := doForm(handler, http.MethodPost, "/contact", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "Your Feedback Has Been Received!" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestContactMissingQuestion(t *testing.T) {
	handler := newTestHandler(t)

	rec := doForm(handler, http.MethodPost, "/contact", url.Values{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Body.String() != "No question specified" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestAccountLifecycle(t *testing.T) {
	handler := newTestHandler(t)

	signup := url.Values{}
	signup.Set("username", "ethan")
	signup.Set("email", "e@example.com")
	signup.Set("password", "hunter2")

	rec := doForm(handler, http.MethodPost, "/signup", signup)
	if rec.Code != http.StatusOK {
		t.Fatalf("signup: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Successful Signup!" {
		t.Errorf("unexpected signup body: %q", rec.Body.String())
	}

	login := url.Values{}
	login.Set("username", "ethan")
	login.Set("password", "hunter2")

	rec = doForm(handler, http.MethodPost, "/login", login)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Successful Login!" {
		t.Errorf("unexpected login body: %q", rec.Body.String())
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected a sessionid cookie")
	}
	if session.Value == "" {
		t.Fatal("expected a non-empty session token")
	}
	expectedExpiry := time.Now().Add(3 * time.Hour)
	if session.Expires.Before(expectedExpiry.Add(-time.Minute)) || session.Expires.After(expectedExpiry.Add(time.Minute)) {
		t.Errorf("cookie expiry %v not within 3h of now", session.Expires)
	}

	resume := url.Values{}
	resume.Set(SessionCookie, session.Value)

	rec = doForm(handler, http.MethodPost, "/resumesession", resume)
	if rec.Code != http.StatusOK {
		t.Fatalf("resumesession: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "ethan" {
		t.Errorf("expected username back, got %q", rec.Body.String())
	}

	rec = doForm(handler, http.MethodPost, "/logout", resume)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Successful logout!" {
		t.Errorf("unexpected logout body: %q", rec.Body.String())
	}

	rec = doForm(handler, http.MethodPost, "/resumesession", resume)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("resume after logout: expected 400, got %d", rec.Code)
	}
	if rec.Body.String() != "Invalid sessionid" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestSignupDuplicate(t *testing.T) {
	handler := newTestHandler(t)

	form := url.Values{}
	form.Set("username", "ethan")
	form.Set("email", "e@example.com")
	form.Set("password", "pw")

	if rec := doForm(handler, http.MethodPost, "/signup", form); rec.Code != http.StatusOK {
		t.Fatalf("first signup: expected 200, got %d", rec.Code)
	}

	rec := doForm(handler, http.MethodPost, "/signup", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Body.String() != "Username taken, try another!" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestLoginBadCredentials(t *testing.T) {
	handler := newTestHandler(t)

	form := url.Values{}
	form.Set("username", "ghost")
	form.Set("password", "pw")

	rec := doForm(handler, http.MethodPost, "/login", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Body.String() != "Invalid parameters, please try again with different ones" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestLogoutUnknownTokenSucceeds(t *testing.T) {
	handler := newTestHandler(t)

	form := url.Values{}
	form.Set(SessionCookie, "54321")

	rec := doForm(handler, http.MethodPost, "/logout", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "Successful logout!" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestResumeSessionMissingToken(t *testing.T) {
	handler := newTestHandler(t)

	rec := doForm(handler, http.MethodPost, "/resumesession", url.Values{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Body.String() != "Please input a sessionid" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
