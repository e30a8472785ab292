package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okcommons/community-calendar/internal/auth"
	"github.com/okcommons/community-calendar/internal/model"
	"github.com/okcommons/community-calendar/internal/repository"
	"github.com/okcommons/community-calendar/internal/service"
)

type testAPI struct {
	router *chi.Mux
	tokens *auth.Tokens
	users  *repository.MemoryUserStore
	events *repository.MemoryEventStore
}

// newTestAPI wires the full router against in-memory stores, mirroring the
// route layout in cmd/main.go.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	events := repository.NewMemoryEventStore()
	users := repository.NewMemoryUserStore()
	tokens := auth.NewTokens("test-secret", time.Hour)
	authMw := auth.NewMiddleware(tokens, users)

	eventHandler := NewEventHandler(service.NewEventService(events))
	accountHandler := NewAccountHandler(service.NewAccountService(users, tokens))

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", accountHandler.Register)
			r.Post("/login", accountHandler.Login)
		})
		r.Route("/events", func(r chi.Router) {
			r.With(authMw.Optional).Get("/", eventHandler.ListEvents)
			r.With(authMw.Optional).Get("/{id}", eventHandler.GetEvent)
			r.Group(func(r chi.Router) {
				r.Use(authMw.Require)
				r.Post("/", eventHandler.CreateEvent)
				r.Put("/{id}", eventHandler.UpdateEvent)
				r.Delete("/{id}", eventHandler.DeleteEvent)
				r.Post("/{id}/rsvp", eventHandler.SetRSVP)
				r.Post("/{id}/favorite", eventHandler.SetFavorite)
			})
		})
	})

	return &testAPI{router: r, tokens: tokens, users: users, events: events}
}

// addUser seeds an account and returns a valid token for it.
func (api *testAPI) addUser(t *testing.T, id, username string) string {
	t.Helper()
	err := api.users.Create(context.Background(), &model.User{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	token, err := api.tokens.Issue(id)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (api *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %s: %v", rec.Body, err)
	}
	return v
}

func eventBody() model.EventInput {
	return model.EventInput{
		Title:    "Fall Festival",
		Category: "festival",
		Date:     "2026-10-10",
		Location: "Fairgrounds",
	}
}

func (api *testAPI) createEvent(t *testing.T, token string) model.ClientEvent {
	t.Helper()
	rec := api.do(t, http.MethodPost, "/api/events", token, eventBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body)
	}
	return decodeBody[model.ClientEvent](t, rec)
}

func TestCreateEventStatusCodes(t *testing.T) {
	api := newTestAPI(t)
	token := api.addUser(t, "user-a", "alice")

	if rec := api.do(t, http.MethodPost, "/api/events", "", eventBody()); rec.Code != http.StatusUnauthorized {
		t.Errorf("no credential: status %d, want 401", rec.Code)
	}
	if rec := api.do(t, http.MethodPost, "/api/events", "bad-token", eventBody()); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad credential: status %d, want 401", rec.Code)
	}

	bad := eventBody()
	bad.Title = "x"
	rec := api.do(t, http.MethodPost, "/api/events", token, bad)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body: status %d, want 400", rec.Code)
	}
	errResp := decodeBody[model.ErrorResponse](t, rec)
	if len(errResp.Fields) == 0 {
		t.Error("400 response carries no field errors")
	}

	created := api.createEvent(t, token)
	if created.Organizer != "alice" || created.OrganizerID != "user-a" {
		t.Errorf("organizer = %s/%s", created.Organizer, created.OrganizerID)
	}
}

func TestGetEvent(t *testing.T) {
	api := newTestAPI(t)
	token := api.addUser(t, "user-a", "alice")
	created := api.createEvent(t, token)

	if rec := api.do(t, http.MethodGet, "/api/events/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing event: status %d, want 404", rec.Code)
	}

	rec := api.do(t, http.MethodGet, "/api/events/"+created.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	view := decodeBody[model.ClientEvent](t, rec)
	if view.ID != created.ID {
		t.Errorf("id = %q", view.ID)
	}
}

// Scenario E: after another user RSVPs and favorites, an anonymous read sees
// the counters but no viewer-specific state and no membership identifiers.
func TestAnonymousViewAfterEngagement(t *testing.T) {
	api := newTestAPI(t)
	tokenA := api.addUser(t, "user-a", "alice")
	tokenB := api.addUser(t, "user-b", "bob")
	created := api.createEvent(t, tokenA)

	if rec := api.do(t, http.MethodPost, "/api/events/"+created.ID+"/rsvp", tokenB, model.RSVPInput{RSVPStatus: "going"}); rec.Code != http.StatusOK {
		t.Fatalf("rsvp: status %d", rec.Code)
	}
	if rec := api.do(t, http.MethodPost, "/api/events/"+created.ID+"/favorite", tokenB, model.FavoriteInput{IsFavorited: true}); rec.Code != http.StatusOK {
		t.Fatalf("favorite: status %d", rec.Code)
	}

	rec := api.do(t, http.MethodGet, "/api/events/"+created.ID, "", nil)
	view := decodeBody[model.ClientEvent](t, rec)
	if view.UserRSVP != "" || view.IsFavorited {
		t.Errorf("anonymous view leaked viewer state: %+v", view)
	}
	if view.AttendeesGoing != 1 {
		t.Errorf("attendees_going = %d, want 1", view.AttendeesGoing)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("user-b")) {
		t.Errorf("membership identifier leaked: %s", rec.Body)
	}

	// The engaged viewer sees their own state.
	rec = api.do(t, http.MethodGet, "/api/events/"+created.ID, tokenB, nil)
	view = decodeBody[model.ClientEvent](t, rec)
	if view.UserRSVP != "going" || !view.IsFavorited {
		t.Errorf("viewer state = %q/%v, want going/true", view.UserRSVP, view.IsFavorited)
	}
}

func TestUpdateEventStatusCodes(t *testing.T) {
	api := newTestAPI(t)
	tokenA := api.addUser(t, "user-a", "alice")
	tokenC := api.addUser(t, "user-c", "carol")
	created := api.createEvent(t, tokenA)

	update := eventBody()
	update.Title = "Fall Festival (moved indoors)"

	if rec := api.do(t, http.MethodPut, "/api/events/"+created.ID, tokenC, update); rec.Code != http.StatusForbidden {
		t.Errorf("non-organizer: status %d, want 403", rec.Code)
	}
	if rec := api.do(t, http.MethodPut, "/api/events/nope", tokenA, update); rec.Code != http.StatusNotFound {
		t.Errorf("missing event: status %d, want 404", rec.Code)
	}

	bad := eventBody()
	bad.Date = "10/10/2026"
	if rec := api.do(t, http.MethodPut, "/api/events/"+created.ID, tokenA, bad); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body: status %d, want 400", rec.Code)
	}

	rec := api.do(t, http.MethodPut, "/api/events/"+created.ID, tokenA, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("organizer update: status %d: %s", rec.Code, rec.Body)
	}
	if got := decodeBody[model.ClientEvent](t, rec); got.Title != update.Title {
		t.Errorf("title = %q", got.Title)
	}
}

func TestDeleteEventStatusCodes(t *testing.T) {
	api := newTestAPI(t)
	tokenA := api.addUser(t, "user-a", "alice")
	tokenC := api.addUser(t, "user-c", "carol")
	created := api.createEvent(t, tokenA)

	if rec := api.do(t, http.MethodDelete, "/api/events/"+created.ID, tokenC, nil); rec.Code != http.StatusForbidden {
		t.Errorf("non-organizer: status %d, want 403", rec.Code)
	}
	rec := api.do(t, http.MethodDelete, "/api/events/"+created.ID, tokenA, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: status %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("204 carried a body: %s", rec.Body)
	}
	if rec := api.do(t, http.MethodDelete, "/api/events/"+created.ID, tokenA, nil); rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete: status %d, want 404", rec.Code)
	}
}

func TestRSVPStatusCodes(t *testing.T) {
	api := newTestAPI(t)
	tokenA := api.addUser(t, "user-a", "alice")
	tokenB := api.addUser(t, "user-b", "bob")
	created := api.createEvent(t, tokenA)

	if rec := api.do(t, http.MethodPost, "/api/events/"+created.ID+"/rsvp", tokenB, model.RSVPInput{RSVPStatus: "maybe"}); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid status: %d, want 400", rec.Code)
	}
	if rec := api.do(t, http.MethodPost, "/api/events/nope/rsvp", tokenB, model.RSVPInput{RSVPStatus: "going"}); rec.Code != http.StatusNotFound {
		t.Errorf("missing event: %d, want 404", rec.Code)
	}

	rec := api.do(t, http.MethodPost, "/api/events/"+created.ID+"/rsvp", tokenB, model.RSVPInput{RSVPStatus: "going"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rsvp: status %d", rec.Code)
	}
	resp := decodeBody[model.RSVPResponse](t, rec)
	if resp.EventID != created.ID || resp.RSVPStatus != "going" {
		t.Errorf("response = %+v", resp)
	}
}

func TestFavoriteStatusCodes(t *testing.T) {
	api := newTestAPI(t)
	tokenA := api.addUser(t, "user-a", "alice")
	tokenB := api.addUser(t, "user-b", "bob")
	created := api.createEvent(t, tokenA)

	if rec := api.do(t, http.MethodPost, "/api/events/nope/favorite", tokenB, model.FavoriteInput{IsFavorited: true}); rec.Code != http.StatusNotFound {
		t.Errorf("missing event: %d, want 404", rec.Code)
	}

	rec := api.do(t, http.MethodPost, "/api/events/"+created.ID+"/favorite", tokenB, model.FavoriteInput{IsFavorited: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("favorite: status %d", rec.Code)
	}
	resp := decodeBody[model.FavoriteResponse](t, rec)
	if resp.EventID != created.ID || !resp.IsFavorited {
		t.Errorf("response = %+v", resp)
	}
}

func TestListEvents(t *testing.T) {
	api := newTestAPI(t)
	token := api.addUser(t, "user-a", "alice")

	// Empty store returns an empty array, not null.
	rec := api.do(t, http.MethodGet, "/api/events", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); !bytes.Equal(body, []byte("[]")) {
		t.Errorf("empty list body = %s, want []", body)
	}

	for i := 0; i < 3; i++ {
		in := eventBody()
		in.Title = fmt.Sprintf("Event %d", i)
		in.Date = fmt.Sprintf("2026-10-%02d", 10+i)
		if rec := api.do(t, http.MethodPost, "/api/events", token, in); rec.Code != http.StatusCreated {
			t.Fatalf("create %d: status %d", i, rec.Code)
		}
	}

	rec = api.do(t, http.MethodGet, "/api/events?search=event+1", "", nil)
	views := decodeBody[[]model.ClientEvent](t, rec)
	if len(views) != 1 || views[0].Title != "Event 1" {
		t.Errorf("search result = %+v", views)
	}
}

func TestRegisterAndLoginEndToEnd(t *testing.T) {
	api := newTestAPI(t)

	reg := api.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterInput{
		Username: "dana",
		Email:    "dana@example.com",
		Password: "correct-horse-battery",
	})
	if reg.Code != http.StatusCreated {
		t.Fatalf("register: status %d: %s", reg.Code, reg.Body)
	}
	account := decodeBody[model.AuthResponse](t, reg)
	if account.Token == "" {
		t.Fatal("register returned no token")
	}

	if rec := api.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterInput{
		Username: "dana2",
		Email:    "dana@example.com",
		Password: "correct-horse-battery",
	}); rec.Code != http.StatusConflict {
		t.Errorf("duplicate email: status %d, want 409", rec.Code)
	}

	if rec := api.do(t, http.MethodPost, "/api/auth/login", "", model.LoginInput{
		Email:    "dana@example.com",
		Password: "wrong",
	}); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status %d, want 401", rec.Code)
	}

	login := api.do(t, http.MethodPost, "/api/auth/login", "", model.LoginInput{
		Email:    "dana@example.com",
		Password: "correct-horse-battery",
	})
	if login.Code != http.StatusOK {
		t.Fatalf("login: status %d: %s", login.Code, login.Body)
	}

	// The registration token works against a protected route.
	if rec := api.do(t, http.MethodPost, "/api/events", account.Token, eventBody()); rec.Code != http.StatusCreated {
		t.Errorf("create with fresh token: status %d", rec.Code)
	}
}
