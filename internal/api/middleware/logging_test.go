package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/planner-module/internal/auth"
)

func TestRequestLogger(t *testing.T) {
	tokens, err := auth.NewTokenManager(testSecret, "", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	token, _, err := tokens.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	authn := NewAuthenticator(tokens, nil, testLogger())

	tests := []struct {
		name       string
		status     int
		header     string
		wantLevel  string
		wantUserID string
	}{
		{"успех с пользователем", http.StatusOK, "Bearer " + token, "INFO", testUser.UserID},
		{"ошибка клиента", http.StatusNotFound, "Bearer " + token, "WARN", testUser.UserID},
		{"ошибка сервера", http.StatusInternalServerError, "Bearer " + token, "ERROR", testUser.UserID},
		{"без аутентификации", 0, "", "WARN", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			final := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("ok"))
			})
			handler := RequestLogger(logger)(authn.Middleware()(final))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/persons", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("разбор записи лога %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, ожидается %s", entry["level"], tt.wantLevel)
			}
			if entry["path"] != "/api/v1/persons" {
				t.Errorf("path = %v", entry["path"])
			}
			gotUser, _ := entry["user_id"].(string)
			if gotUser != tt.wantUserID {
				t.Errorf("user_id = %q, ожидается %q", gotUser, tt.wantUserID)
			}
		})
	}
}
