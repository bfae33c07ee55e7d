package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"teamdeck/internal/model"
)

func TestUsers_ListDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/users" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []model.User{{ID: 1, Name: "Ada", Email: "ada@example.com", Age: 36}},
		})
	}))
	defer srv.Close()

	users, err := Users(NewClient(srv.URL)).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].Name != "Ada" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestUsers_ListEmptyDataIsNotNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	users, err := Users(NewClient(srv.URL)).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", users)
	}
}

func TestUsers_CreateReturnsEntityAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var draft model.UserDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			t.Fatalf("decode draft: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":    model.User{ID: 5, Name: draft.Name, Email: draft.Email, Age: draft.Age},
			"message": "User created successfully",
		})
	}))
	defer srv.Close()

	u, msg, err := Users(NewClient(srv.URL)).Create(context.Background(), model.UserDraft{
		Name: "Ada", Email: "ada@example.com", Age: 36,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID != 5 || u.Name != "Ada" {
		t.Fatalf("unexpected entity: %+v", u)
	}
	if msg != "User created successfully" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestUsers_CreateValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"email is required"}`))
	}))
	defer srv.Close()

	_, _, err := Users(NewClient(srv.URL)).Create(context.Background(), model.UserDraft{Name: "x"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "email is required" {
		t.Fatalf("message not surfaced verbatim: %q", verr.Message)
	}
}

func TestUsers_UpdateVanishedIDIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/users/42" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"user not found"}`))
	}))
	defer srv.Close()

	_, _, err := Users(NewClient(srv.URL)).Update(context.Background(), 42, model.UserDraft{Name: "x"})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Kind != "user" || nf.ID != 42 {
		t.Fatalf("unexpected NotFoundError: %+v", nf)
	}
}

func TestUsers_RemoveVanishedIDIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"user not found"}`))
	}))
	defer srv.Close()

	_, err := Users(NewClient(srv.URL)).Remove(context.Background(), 42)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestClient_ServerErrorCarriesStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"db is on fire"}`))
	}))
	defer srv.Close()

	_, err := Users(NewClient(srv.URL)).List(context.Background())
	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serr.Status != 500 || serr.Message != "db is on fire" {
		t.Fatalf("unexpected ServerError: %+v", serr)
	}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := Users(NewClient(srv.URL)).List(context.Background())
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestClient_GarbageSuccessBodyIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>proxy splash page</html>"))
	}))
	defer srv.Close()

	_, err := Users(NewClient(srv.URL)).List(context.Background())
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkError for undecodable 200 body, got %v", err)
	}
	var serr *ServerError
	if errors.As(err, &serr) {
		t.Fatalf("a success status must not surface as ServerError: %v", err)
	}
}

func TestProjects_ListToleratesStringUserIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"Apollo","description":"","user_ids":"[1,2]"}]}`))
	}))
	defer srv.Close()

	projects, err := Projects(NewClient(srv.URL)).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("unexpected projects: %+v", projects)
	}
	if got := projects[0].UserIDs; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("user_ids not normalized: %#v", got)
	}
}
