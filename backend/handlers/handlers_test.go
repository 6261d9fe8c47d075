package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/duckbook/duckbook/backend/config"
	"github.com/duckbook/duckbook/backend/middleware"
	websvc "github.com/duckbook/duckbook/backend/services"
	"github.com/duckbook/duckbook/backend/templates"
	"github.com/duckbook/duckbook/duckbook"
	"github.com/duckbook/duckbook/duckbook/database/models"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
	"github.com/duckbook/duckbook/duckbook/database/repositories/stubs"
	"github.com/duckbook/duckbook/duckbook/ducklevel"
	"github.com/duckbook/duckbook/duckbook/services"
)

type testEnv struct {
	app      *fiber.App
	ducks    *stubs.DuckRepo
	comps    *stubs.CompetenceRepo
	bookings *stubs.BookingRepo
	users    *stubs.UserRepo
}

// newTestEnv wires the API routes against in-memory repositories. The
// pool starts with one duck that is proficient enough in Perl to be
// booked without forcing.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ducks := stubs.NewDuckRepo(&models.Duck{
		ID:         1,
		Name:       "Donald",
		Color:      "1ab2fc",
		SpeciesID:  1,
		LocationID: 1,
		DonatedAt:  time.Now().Add(-24 * time.Hour),
	})
	comps := stubs.NewCompetenceRepo(&models.Competence{ID: 1, Name: "Perl"})
	bookings := stubs.NewBookingRepo()
	bookings.SetMinutes(1, 1, 20000, 0)
	users := stubs.NewUserRepo()

	repos := &repositories.Repositories{
		Species:    stubs.NewSpeciesRepo(&models.Species{ID: 1, Name: "Mallard"}),
		Location:   stubs.NewLocationRepo(&models.Location{ID: 1, Name: "Pond"}),
		Competence: comps,
		Duck:       ducks,
		Booking:    bookings,
		DuckName:   stubs.NewNameRepo(),
		User:       users,
	}

	calc := ducklevel.NewCalculator(ducklevel.NewDefaultConfig())
	webCfg := config.NewWebAppConfig(&duckbook.Config{
		Web:   duckbook.WebConfig{SessionSecret: "test-session-secret"},
		Ducks: duckbook.DucksConfig{MaxLevel: 5, WarnLevel: 2, MinSimilarity: 75},
	}, true)
	sessions := websvc.NewSessionService(webCfg)

	renderer, err := templates.New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	webApp := &WebApp{
		Config:      webCfg,
		Repos:       repos,
		Ducks:       services.NewDuckService(repos.Duck, repos.Species, repos.Location),
		Bookings:    services.NewBookingService(repos.Duck, repos.Competence, repos.Booking, calc),
		Competences: services.NewCompetenceService(repos.Competence, 75),
		Naming:      services.NewNamingService(repos.Duck, repos.DuckName),
		Search:      services.NewSearchService(repos.Duck),
		Sessions:    sessions,
		Auth:        websvc.NewAuthService(repos.User),
		Calc:        calc,
		Templates:   renderer,
		Version:     "test",
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Get("/health", HealthCheck(webApp))

	pages := app.Group("/", middleware.OptionalAuth(sessions))
	pages.Get("/", DucksPage(webApp))
	pages.Get("/vocabulary.html", StaticPage(webApp, "vocabulary.html"))
	pages.Get("/terms.html", StaticPage(webApp, "terms.html"))
	pages.Get("/disclaimer.html", StaticPage(webApp, "disclaimer.html"))

	legacy := app.Group("/duck", middleware.LegacyAuthRequired(sessions))
	legacy.Post("/book/", LegacyBookDuck(webApp))

	api := app.Group("/api/v1")
	api.Post("/auth/register/", Register(webApp))
	api.Post("/auth/login/", Login(webApp))
	api.Post("/auth/logout/", Logout(webApp))
	api.Get("/auth/validate/", ValidateSession(webApp))

	api.Get("/ducks/", DucksList(webApp))
	api.Get("/ducks/search/", DuckSearch(webApp))
	api.Post("/ducks/donate/", middleware.AuthRequired(sessions), DuckDonate(webApp))
	api.Get("/ducks/:id/", DuckDetail(webApp))
	api.Post("/ducks/:id/book/", middleware.AuthRequired(sessions), BookDuck(webApp))
	api.Post("/ducks/:id/release/", middleware.AuthRequired(sessions), ReleaseDuck(webApp))
	api.Get("/ducks/:id/bookings/", BookingHistory(webApp))
	api.Post("/ducks/:id/photo/", middleware.AuthRequired(sessions), DuckPhotoUpload(webApp))
	api.Delete("/ducks/:id/photo/", middleware.AuthRequired(sessions), DuckPhotoDelete(webApp))

	api.Get("/ducks/:id/names/", NameTally(webApp))
	api.Post("/ducks/:id/names/", middleware.AuthRequired(sessions), NameSuggest(webApp))
	api.Post("/names/:nameID/vote/", middleware.AuthRequired(sessions), NameVote(webApp))
	api.Post("/names/:nameID/settle/",
		middleware.AuthRequired(sessions),
		middleware.AdminRequired(),
		NameSettle(webApp))

	api.Get("/competences/", CompetencesList(webApp))
	api.Post("/competences/", middleware.AuthRequired(sessions), CompetenceCreate(webApp))
	api.Get("/competences/similar/", CompetenceSimilar(webApp))
	api.Get("/competences/:id/", CompetenceDetail(webApp))

	return &testEnv{app: app, ducks: ducks, comps: comps, bookings: bookings, users: users}
}

func (env *testEnv) do(t *testing.T, method, path, cookie string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: websvc.SessionCookieName, Value: cookie})
	}

	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == websvc.SessionCookieName {
			return ck.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}

// signIn registers an account through the API and returns its session
// cookie.
func (env *testEnv) signIn(t *testing.T, username string) string {
	t.Helper()
	resp := env.do(t, "POST", "/api/v1/auth/register/", "", fiber.Map{
		"username": username,
		"password": "quackquack",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
	return sessionCookie(t, resp)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "GET", "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON(t, resp)
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
	if body["ducks"] != float64(1) {
		t.Errorf("ducks = %v, want 1", body["ducks"])
	}
}

func TestLegacyBookDuck(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "POST", "/duck/book/", "", fiber.Map{"duck_id": 1, "comp_id": 1})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated: status = %d, want 401", resp.StatusCode)
	}

	cookie := env.signIn(t, "scrooge")

	resp = env.do(t, "POST", "/duck/book/", cookie, fiber.Map{"duck_id": 1, "comp_id": 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("book: status = %d, want 200", resp.StatusCode)
	}
	if body := decodeJSON(t, resp); body["success"] != float64(2) {
		t.Errorf("success = %v, want 2", body["success"])
	}

	resp = env.do(t, "POST", "/duck/book/", cookie, fiber.Map{"duck_id": 1, "comp_id": 1})
	if body := decodeJSON(t, resp); body["success"] != float64(0) {
		t.Errorf("rebook success = %v, want 0", body["success"])
	}

	// Duck 2 has no Perl record, so the booking needs force.
	env.ducks.Ducks[2] = &models.Duck{ID: 2, DonatedAt: time.Now()}
	resp = env.do(t, "POST", "/duck/book/", cookie, fiber.Map{"duck_id": 2, "comp_id": 1})
	if body := decodeJSON(t, resp); body["success"] != float64(1) {
		t.Errorf("low competence success = %v, want 1", body["success"])
	}

	resp = env.do(t, "POST", "/duck/book/", cookie, fiber.Map{"duck_id": 2, "comp_id": 1, "force": true})
	if body := decodeJSON(t, resp); body["success"] != float64(2) {
		t.Errorf("forced success = %v, want 2", body["success"])
	}
}

func TestBookDuckREST(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "POST", "/api/v1/ducks/1/book/", "", fiber.Map{"competence": 1})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unauthenticated: status = %d, want 403", resp.StatusCode)
	}

	cookie := env.signIn(t, "scrooge")

	resp = env.do(t, "POST", "/api/v1/ducks/1/book/", cookie, fiber.Map{"competence": 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("book: status = %d, want 200", resp.StatusCode)
	}
	if body := decodeJSON(t, resp); body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}

	resp = env.do(t, "POST", "/api/v1/ducks/99/book/", cookie, fiber.Map{"competence": 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown duck: status = %d, want 404", resp.StatusCode)
	}

	resp = env.do(t, "POST", "/api/v1/ducks/1/book/", cookie, fiber.Map{"competence": 99})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown competence: status = %d, want 404", resp.StatusCode)
	}
}

func TestReleaseDuck(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signIn(t, "scrooge")
	other := env.signIn(t, "launchpad")

	resp := env.do(t, "POST", "/api/v1/ducks/1/book/", owner, fiber.Map{"competence": 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("book: status = %d, want 200", resp.StatusCode)
	}

	resp = env.do(t, "POST", "/api/v1/ducks/1/release/", other, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-owner release: status = %d, want 403", resp.StatusCode)
	}

	resp = env.do(t, "POST", "/api/v1/ducks/1/release/", owner, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("release: status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON(t, resp)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["booking_complete"] != true {
		t.Errorf("booking_complete = %v, want true", body["booking_complete"])
	}

	resp = env.do(t, "POST", "/api/v1/ducks/1/release/", owner, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("release without booking: status = %d, want 404", resp.StatusCode)
	}
}

func TestDuckDonate(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "POST", "/api/v1/ducks/donate/", "", fiber.Map{
		"species": 1, "location": 1, "color": "1ab2fc",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unauthenticated: status = %d, want 403", resp.StatusCode)
	}

	cookie := env.signIn(t, "scrooge")

	tests := []struct {
		name       string
		body       fiber.Map
		wantStatus string
	}{
		{"missing color", fiber.Map{"species": 1, "location": 1}, "incomplete-request"},
		{"unknown species", fiber.Map{"species": 99, "location": 1, "color": "1ab2fc"}, "bad-species"},
		{"unknown location", fiber.Map{"species": 1, "location": 99, "color": "1ab2fc"}, "bad-location"},
		{"bad color", fiber.Map{"species": 1, "location": 1, "color": "mauve"}, "bad-color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, "POST", "/api/v1/ducks/donate/", cookie, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if body := decodeJSON(t, resp); body["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %s", body["status"], tt.wantStatus)
			}
		})
	}

	resp = env.do(t, "POST", "/api/v1/ducks/donate/", cookie, fiber.Map{
		"species": 1, "location": 1, "color": "1AB2fc", "name": "Dolly",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid donation: status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON(t, resp)
	id, ok := body["id"].(float64)
	if !ok || id == 0 {
		t.Fatalf("donation id = %v", body["id"])
	}
	if env.ducks.Ducks[int64(id)].Name != "Dolly" {
		t.Errorf("stored duck name = %q, want Dolly", env.ducks.Ducks[int64(id)].Name)
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "POST", "/api/v1/auth/register/", "", fiber.Map{
		"username": "scrooge", "password": "quackquack",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status = %d, want 201", resp.StatusCode)
	}
	sessionCookie(t, resp)

	resp = env.do(t, "POST", "/api/v1/auth/register/", "", fiber.Map{
		"username": "scrooge", "password": "quackquack",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register: status = %d, want 409", resp.StatusCode)
	}

	resp = env.do(t, "POST", "/api/v1/auth/login/", "", fiber.Map{
		"username": "scrooge", "password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d, want 401", resp.StatusCode)
	}

	resp = env.do(t, "POST", "/api/v1/auth/login/", "", fiber.Map{
		"username": "scrooge", "password": "quackquack",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status = %d, want 200", resp.StatusCode)
	}
	cookie := sessionCookie(t, resp)

	resp = env.do(t, "GET", "/api/v1/auth/validate/", cookie, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("validate: status = %d, want 200", resp.StatusCode)
	}

	resp = env.do(t, "GET", "/api/v1/auth/validate/", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("validate without cookie: status = %d, want 401", resp.StatusCode)
	}

	resp = env.do(t, "GET", "/api/v1/auth/validate/", "tampered-cookie", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("validate with bad cookie: status = %d, want 401", resp.StatusCode)
	}
}

func TestCompetenceCreate(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "scrooge")

	resp := env.do(t, "POST", "/api/v1/competences/", cookie, fiber.Map{"name": "perl"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("exact duplicate: status = %d, want 409", resp.StatusCode)
	}

	resp = env.do(t, "POST", "/api/v1/competences/", cookie, fiber.Map{"name": "Pearl"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("near duplicate: status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON(t, resp)
	similar, ok := body["similar"].([]interface{})
	if !ok || len(similar) != 1 || similar[0] != "Perl" {
		t.Errorf("similar = %v, want [Perl]", body["similar"])
	}
}

func TestCompetenceDetail(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "GET", "/api/v1/competences/1/", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeJSON(t, resp)
	if body["id"] != float64(1) || body["name"] != "Perl" {
		t.Errorf("body = %v, want id 1 name Perl", body)
	}

	resp = env.do(t, "GET", "/api/v1/competences/99/", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown competence: status = %d, want 404", resp.StatusCode)
	}

	// The :id route must not shadow the similar endpoint.
	resp = env.do(t, "GET", "/api/v1/competences/similar/?name=pearl", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("similar: status = %d, want 200", resp.StatusCode)
	}
	if body := decodeJSON(t, resp); body["similar"] == nil {
		t.Error("similar endpoint returned no similar field")
	}
}

func TestDuckPhotoWithoutStorage(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "scrooge")

	resp := env.do(t, "DELETE", "/api/v1/ducks/1/photo/", cookie, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("delete: status = %d, want 503", resp.StatusCode)
	}

	resp = env.do(t, "DELETE", "/api/v1/ducks/1/photo/", "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("unauthenticated delete: status = %d, want 403", resp.StatusCode)
	}
}

func TestStaticPages(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/vocabulary.html", "/terms.html", "/disclaimer.html"} {
		resp := env.do(t, "GET", path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: content type = %q, want text/html", path, ct)
		}
	}
}

func TestNameSuggestVoteSettle(t *testing.T) {
	env := newTestEnv(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("quackquack"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	env.users.Users[100] = &models.User{
		ID:           100,
		Username:     "boss",
		PasswordHash: string(hash),
		IsAdmin:      true,
	}

	cookie := env.signIn(t, "scrooge")

	env.ducks.Ducks[2] = &models.Duck{ID: 2, DonatedAt: time.Now()}
	resp := env.do(t, "POST", "/api/v1/ducks/2/names/", cookie, fiber.Map{"name": "Dolly"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("suggest: status = %d, want 200", resp.StatusCode)
	}
	suggestion := decodeJSON(t, resp)
	votePath := fmt.Sprintf("/api/v1/names/%.0f/vote/", suggestion["id"].(float64))
	settlePath := fmt.Sprintf("/api/v1/names/%.0f/settle/", suggestion["id"].(float64))

	resp = env.do(t, "POST", votePath, cookie, fiber.Map{"upvote": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("vote: status = %d, want 200", resp.StatusCode)
	}

	resp = env.do(t, "GET", "/api/v1/ducks/2/names/", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tally: status = %d, want 200", resp.StatusCode)
	}
	var tallies []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&tallies); err != nil {
		t.Fatalf("decode tallies: %v", err)
	}
	resp.Body.Close()
	if len(tallies) != 1 || tallies[0]["upvotes"] != float64(1) {
		t.Fatalf("tallies = %v, want one entry with 1 upvote", tallies)
	}

	resp = env.do(t, "POST", settlePath, cookie, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("settle as regular user: status = %d, want 403", resp.StatusCode)
	}

	resp = env.do(t, "POST", "/api/v1/auth/login/", "", fiber.Map{
		"username": "boss", "password": "quackquack",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login: status = %d, want 200", resp.StatusCode)
	}
	admin := sessionCookie(t, resp)

	resp = env.do(t, "POST", settlePath, admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("settle: status = %d, want 200", resp.StatusCode)
	}
	if got := env.ducks.Ducks[2].Name; got != "Dolly" {
		t.Errorf("duck name = %q, want Dolly", got)
	}

	resp = env.do(t, "POST", votePath, cookie, fiber.Map{"upvote": false})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("vote after settle: status = %d, want 409", resp.StatusCode)
	}
}
