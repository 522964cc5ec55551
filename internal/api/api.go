// ABOUTME: HTTP handlers for the user CRUD endpoints and login
// ABOUTME: Maps request bodies to store operations and errors to status codes

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/unilab/restlab/internal/auth"
	"github.com/unilab/restlab/internal/store"
)

// CreateUserRequest is the JSON request body for POST and PUT on users.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginRequest is the JSON request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the JSON response for a successful login. ExpiresIn is
// the token lifetime in milliseconds.
type LoginResponse struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ExpiresIn int64  `json:"expiresIn"`
}

// errorResponse is the structured body for every non-2xx response.
type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// emailRx is a light well-formedness check, not full address validation.
var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateUser returns a field-to-message map for a create/update body.
// An empty map means the body is valid.
func validateUser(req CreateUserRequest) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "name is required"
	}
	switch {
	case strings.TrimSpace(req.Email) == "":
		fields["email"] = "email is required"
	case !emailRx.MatchString(req.Email):
		fields["email"] = "must be a valid email address"
	}
	return fields
}

// handleUsers handles GET (list) and POST (create) on /api/v1/users.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.store.List())

	case http.MethodPost:
		var req CreateUserRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		if fields := validateUser(req); len(fields) > 0 {
			s.writeValidationError(w, fields)
			return
		}

		created := s.store.Create(req.Name, req.Email)
		w.Header().Set("Location", fmt.Sprintf("/api/v1/users/%d", created.ID))
		s.writeJSON(w, http.StatusCreated, created)

	default:
		s.writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// handleUserByID handles GET, PUT and DELETE on /api/v1/users/{id}.
func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(r.URL.Path)
	if !ok {
		s.writeNotFound(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := s.store.Get(id)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, user)

	case http.MethodPut:
		var req CreateUserRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		if fields := validateUser(req); len(fields) > 0 {
			s.writeValidationError(w, fields)
			return
		}

		updated, err := s.store.Update(id, req.Name, req.Email)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if !s.store.Delete(id) {
			s.writeNotFound(w)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		s.writeMethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// handleLogin handles POST /api/v1/auth/login. On success it returns a
// bearer token and the configured lifetime in milliseconds. All credential
// failures share one generic 401 body.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req LoginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	fields := make(map[string]string)
	if req.Username == "" {
		fields["username"] = "username is required"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		s.writeValidationError(w, fields)
		return
	}

	token, err := s.gate.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error:   "authentication failed",
				Message: "invalid username or password",
			})
			return
		}
		s.logger.Error("issuing token failed", "error", err)
		s.writeInternalError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		Type:      "Bearer",
		ExpiresIn: s.gate.Lifetime().Milliseconds(),
	})
}

// parseUserID extracts the numeric id from /api/v1/users/{id}.
// Trailing path segments and non-numeric text are treated as unknown ids.
func parseUserID(path string) (uint64, bool) {
	raw := strings.TrimPrefix(path, "/api/v1/users/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// decodeBody decodes a JSON request body into v, writing a 400 and
// returning false when the body cannot be parsed.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "validation failed",
			Message: "malformed request body",
		})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}

func (s *Server) writeValidationError(w http.ResponseWriter, fields map[string]string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}

func (s *Server) writeNotFound(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

// writeInternalError writes the fixed 500 body. Internal detail stays in
// the logs and never reaches the client.
func (s *Server) writeInternalError(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// writeStoreError maps a store error to its status code. Anything that is
// not ErrNotFound is unexpected and reported as a fixed 500.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeNotFound(w)
		return
	}
	s.logger.Error("store operation failed", "error", err)
	s.writeInternalError(w)
}

func (s *Server) writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
