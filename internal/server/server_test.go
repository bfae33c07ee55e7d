package server

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"

	"teamdeck/internal/api"
	"teamdeck/internal/model"
)

func newTestServer(t *testing.T) (*Server, *api.Client) {
	t.Helper()
	ctx := context.Background()
	srv, err := New(ctx, filepath.Join(t.TempDir(), "teamdeck.sqlite"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return srv, api.NewClient(ts.URL)
}

func TestServer_UserCRUDCycle(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)
	users := api.Users(client)

	created, msg, err := users.Create(ctx, model.UserDraft{Name: "Ada", Email: "ada@example.com", Age: 36})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("missing server-assigned id: %+v", created)
	}
	if msg != "User created successfully" {
		t.Fatalf("unexpected message: %q", msg)
	}

	list, err := users.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0] != created {
		t.Fatalf("list = %+v, want [%+v]", list, created)
	}

	updated, _, err := users.Update(ctx, created.ID, model.UserDraft{Name: "Ada L", Email: "ada@example.com", Age: 37})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || updated.Name != "Ada L" || updated.Age != 37 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := users.Remove(ctx, created.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	list, err = users.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("user not deleted: %+v", list)
	}
}

func TestServer_UserValidation(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)
	users := api.Users(client)

	cases := []struct {
		name  string
		draft model.UserDraft
		want  string
	}{
		{"missing name", model.UserDraft{Email: "a@b.c"}, "name is required"},
		{"missing email", model.UserDraft{Name: "A"}, "email is required"},
		{"bad email", model.UserDraft{Name: "A", Email: "nope"}, "email is invalid"},
		{"negative age", model.UserDraft{Name: "A", Email: "a@b.c", Age: -1}, "age must not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := users.Create(ctx, tc.draft)
			var verr *api.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Message != tc.want {
				t.Fatalf("message = %q, want %q", verr.Message, tc.want)
			}
		})
	}
}

func TestServer_VanishedIDsAre404(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)
	users := api.Users(client)

	var nf *api.NotFoundError
	if _, _, err := users.Update(ctx, 99, model.UserDraft{Name: "A", Email: "a@b.c"}); !errors.As(err, &nf) {
		t.Fatalf("update: expected NotFoundError, got %v", err)
	}
	if _, err := users.Remove(ctx, 99); !errors.As(err, &nf) {
		t.Fatalf("remove: expected NotFoundError, got %v", err)
	}
	// Deleting twice behaves the same as deleting a never-existing id.
	created, _, err := users.Create(ctx, model.UserDraft{Name: "A", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := users.Remove(ctx, created.ID); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if _, err := users.Remove(ctx, created.ID); !errors.As(err, &nf) {
		t.Fatalf("second remove: expected NotFoundError, got %v", err)
	}
}

func TestServer_ProjectUserIDsRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)
	projects := api.Projects(client)

	created, _, err := projects.Create(ctx, model.ProjectDraft{
		Name: "Apollo", Description: "moonshot", UserIDs: []int{1, 2},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !reflect.DeepEqual([]int(created.UserIDs), []int{1, 2}) {
		t.Fatalf("create user_ids: %#v", created.UserIDs)
	}

	list, err := projects.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !reflect.DeepEqual([]int(list[0].UserIDs), []int{1, 2}) {
		t.Fatalf("list user_ids: %#v", list)
	}

	updated, _, err := projects.Update(ctx, created.ID, model.ProjectDraft{
		Name: "Apollo", Description: "moonshot", UserIDs: nil,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.UserIDs == nil || len(updated.UserIDs) != 0 {
		t.Fatalf("nil user_ids not normalized to empty: %#v", updated.UserIDs)
	}
}

func TestServer_ToleratesLegacyUserIDShapes(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestServer(t)

	// Rows written by older backends: user_ids as a bare scalar or as a
	// doubly-encoded JSON string.
	if _, err := srv.db.ExecContext(ctx,
		`INSERT INTO projects (name, description, user_ids) VALUES ('legacy-scalar', '', '3')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := srv.db.ExecContext(ctx,
		`INSERT INTO projects (name, description, user_ids) VALUES ('legacy-string', '', '"[1,2]"')`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	list, err := api.Projects(client).List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if !reflect.DeepEqual([]int(list[0].UserIDs), []int{3}) {
		t.Fatalf("scalar shape: %#v", list[0].UserIDs)
	}
	if !reflect.DeepEqual([]int(list[1].UserIDs), []int{1, 2}) {
		t.Fatalf("string shape: %#v", list[1].UserIDs)
	}
}
