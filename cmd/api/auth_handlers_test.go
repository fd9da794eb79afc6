package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/plsp-store/backend/internal/auth"
	"github.com/plsp-store/backend/internal/user"
)

func testUsers(t *testing.T) *stubUserRepo {
	t.Helper()
	hash, err := auth.HashPassword("admin123", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	studentHash, err := auth.HashPassword("student123", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	sid := "S0000001"
	return newStubUserRepo(
		&user.User{ID: "admin-1", Email: "admin@plsp.edu", PasswordHash: hash,
			FullName: "Admin User", Role: user.RoleAdmin},
		&user.User{ID: "student-1", Email: "student1@plsp.edu", PasswordHash: studentHash,
			FullName: "Student One", Role: user.RoleStudent, StudentID: &sid},
	)
}

func TestLogin_OK(t *testing.T) {
	r := newTestRouter(testUsers(t), testCatalog(), &stubOrderRepo{})

	w := doJSON(r, http.MethodPost, "/auth/login", "", `{"email":"admin@plsp.edu","password":"admin123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("missing token")
	}
	if resp.User.ID != "admin-1" || resp.User.Role != user.RoleAdmin {
		t.Fatalf("user payload wrong: %+v", resp.User)
	}

	// the issued token must be usable on a protected route
	me := doJSON(r, http.MethodGet, "/auth/me", resp.Token, "")
	if me.Code != http.StatusOK {
		t.Fatalf("me status=%d body=%s", me.Code, me.Body.String())
	}
}

func TestLogin_Rejections(t *testing.T) {
	r := newTestRouter(testUsers(t), testCatalog(), &stubOrderRepo{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing password", `{"email":"admin@plsp.edu"}`, http.StatusBadRequest},
		{"unknown email", `{"email":"nobody@plsp.edu","password":"admin123"}`, http.StatusUnauthorized},
		{"wrong password", `{"email":"admin@plsp.edu","password":"wrong"}`, http.StatusUnauthorized},
		{"student on admin login", `{"email":"student1@plsp.edu","password":"student123"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/auth/login", "", tt.body)
			if w.Code != tt.want {
				t.Fatalf("status=%d body=%s (want %d)", w.Code, w.Body.String(), tt.want)
			}
		})
	}
}

func TestMobileLogin_Student(t *testing.T) {
	r := newTestRouter(testUsers(t), testCatalog(), &stubOrderRepo{})

	w := doJSON(r, http.MethodPost, "/auth/mobile-login", "", `{"email":"student1@plsp.edu","password":"student123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			Role      string  `json:"role"`
			StudentID *string `json:"studentId"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User.Role != user.RoleStudent {
		t.Fatalf("role=%s", resp.User.Role)
	}
	if resp.User.StudentID == nil || *resp.User.StudentID != "S0000001" {
		t.Fatalf("studentId missing from mobile payload")
	}
}

func TestMe_RequiresValidToken(t *testing.T) {
	r := newTestRouter(testUsers(t), testCatalog(), &stubOrderRepo{})

	w := doJSON(r, http.MethodGet, "/auth/me", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status=%d, want 401", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/auth/me", "not-a-jwt", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status=%d, want 401", w.Code)
	}

	// valid signature but the subject no longer exists
	w = doJSON(r, http.MethodGet, "/auth/me", tokenFor("ghost", "STUDENT"), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown user: status=%d, want 404", w.Code)
	}
}
