// Package server is a reference backend for the console: the exact REST
// contract teamdeck speaks ({data, message} envelopes, {message} errors),
// persisted in SQLite. It exists so the console runs end to end without an
// external service; it is deliberately nothing more than the contract.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"teamdeck/internal/model"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Server struct {
	db  *sql.DB
	log *zap.Logger
}

type Option func(*Server)

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

func New(ctx context.Context, dbPath string, opts ...Option) (*Server, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage.
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	s := &Server{db: db, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) Close() error { return s.db.Close() }

func (s *Server) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			age INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			user_ids TEXT NOT NULL DEFAULT '[]'
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /projects", s.handleListProjects)
	mux.HandleFunc("POST /projects", s.handleCreateProject)
	mux.HandleFunc("PUT /projects/{id}", s.handleUpdateProject)
	mux.HandleFunc("DELETE /projects/{id}", s.handleDeleteProject)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	body := map[string]any{"data": data}
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(r.PathValue("id")))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// --- users ---

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(),
		`SELECT id, name, email, age FROM users ORDER BY id`)
	if err != nil {
		s.fail(w, "list users", err)
		return
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Age); err != nil {
			s.fail(w, "scan user", err)
			return
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		s.fail(w, "list users", err)
		return
	}
	writeData(w, http.StatusOK, users, "")
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var draft model.UserDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg, ok := validateUser(draft); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.db.ExecContext(r.Context(),
		`INSERT INTO users (name, email, age) VALUES (?, ?, ?)`,
		strings.TrimSpace(draft.Name), strings.TrimSpace(draft.Email), draft.Age)
	if err != nil {
		s.fail(w, "insert user", err)
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		s.fail(w, "insert user", err)
		return
	}

	u := model.User{ID: int(id), Name: strings.TrimSpace(draft.Name), Email: strings.TrimSpace(draft.Email), Age: draft.Age}
	writeData(w, http.StatusCreated, u, "User created successfully")
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var draft model.UserDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg, ok := validateUser(draft); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.db.ExecContext(r.Context(),
		`UPDATE users SET name = ?, email = ?, age = ? WHERE id = ?`,
		strings.TrimSpace(draft.Name), strings.TrimSpace(draft.Email), draft.Age, id)
	if err != nil {
		s.fail(w, "update user", err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	u := model.User{ID: id, Name: strings.TrimSpace(draft.Name), Email: strings.TrimSpace(draft.Email), Age: draft.Age}
	writeData(w, http.StatusOK, u, "User updated successfully")
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	res, err := s.db.ExecContext(r.Context(), `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		s.fail(w, "delete user", err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeData(w, http.StatusOK, nil, "User deleted successfully")
}

func validateUser(d model.UserDraft) (string, bool) {
	if strings.TrimSpace(d.Name) == "" {
		return "name is required", false
	}
	if strings.TrimSpace(d.Email) == "" {
		return "email is required", false
	}
	if !strings.Contains(d.Email, "@") {
		return "email is invalid", false
	}
	if d.Age < 0 {
		return "age must not be negative", false
	}
	return "", true
}

// --- projects ---

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(),
		`SELECT id, name, description, user_ids FROM projects ORDER BY id`)
	if err != nil {
		s.fail(w, "list projects", err)
		return
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var (
			p   model.Project
			ids string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &ids); err != nil {
			s.fail(w, "scan project", err)
			return
		}
		// Stored as JSON text; IDList tolerates historical shapes.
		normalized, _ := model.NormalizeIDs(ids)
		p.UserIDs = normalized
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		s.fail(w, "list projects", err)
		return
	}
	writeData(w, http.StatusOK, projects, "")
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var draft model.ProjectDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(draft.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ids := draft.UserIDs
	if ids == nil {
		ids = []int{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		s.fail(w, "encode user_ids", err)
		return
	}

	res, err := s.db.ExecContext(r.Context(),
		`INSERT INTO projects (name, description, user_ids) VALUES (?, ?, ?)`,
		strings.TrimSpace(draft.Name), draft.Description, string(encoded))
	if err != nil {
		s.fail(w, "insert project", err)
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		s.fail(w, "insert project", err)
		return
	}

	p := model.Project{ID: int(id), Name: strings.TrimSpace(draft.Name), Description: draft.Description, UserIDs: ids}
	writeData(w, http.StatusCreated, p, "Project created successfully")
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var draft model.ProjectDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(draft.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ids := draft.UserIDs
	if ids == nil {
		ids = []int{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		s.fail(w, "encode user_ids", err)
		return
	}

	res, err := s.db.ExecContext(r.Context(),
		`UPDATE projects SET name = ?, description = ?, user_ids = ? WHERE id = ?`,
		strings.TrimSpace(draft.Name), draft.Description, string(encoded), id)
	if err != nil {
		s.fail(w, "update project", err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	p := model.Project{ID: id, Name: strings.TrimSpace(draft.Name), Description: draft.Description, UserIDs: ids}
	writeData(w, http.StatusOK, p, "Project updated successfully")
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	res, err := s.db.ExecContext(r.Context(), `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		s.fail(w, "delete project", err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeData(w, http.StatusOK, nil, "Project deleted successfully")
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.log.Error("backend failure", zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
