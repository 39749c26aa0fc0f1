package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"crm-notification-api/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc, method, path, body string, userID any) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != nil {
		c.Set("userID", userID)
	}

	handler(c)
	return w
}

func TestGetNotificationsRequiresIdentity(t *testing.T) {
	w := performRequest(GetNotifications, http.MethodGet, "/api/v1/notifications", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMarkReadRejectsMalformedID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/notifications/abc/read", nil)
	c.Set("userID", uint(9))
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	MarkNotificationRead(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestMarkReadRejectsNonPositiveID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/notifications/0/read", nil)
	c.Set("userID", uint(9))
	c.Params = gin.Params{{Key: "id", Value: "0"}}

	MarkNotificationRead(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateNotificationRejectsMissingFields(t *testing.T) {
	w := performRequest(CreateNotification, http.MethodPost, "/api/v1/notifications", `{"type":"task_assigned"}`, uint(1))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUpdatePreferencesRejectsMissingMatrix(t *testing.T) {
	w := performRequest(UpdateNotificationPreferences, http.MethodPut, "/api/v1/notifications/preferences", `{}`, uint(9))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRespondServiceErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &services.ValidationError{Field: "type", Value: "bogus"}, http.StatusBadRequest},
		{"not found", &services.NotFoundError{Resource: "notification", ID: 5}, http.StatusNotFound},
		{"authorization", &services.AuthorizationError{Resource: "notification", ID: 5}, http.StatusForbidden},
		{"unknown", errors.New("driver: bad connection"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondServiceError(c, tc.err)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if _, ok := body["error"]; !ok {
				t.Fatalf("response missing error field: %v", body)
			}
		})
	}
}

func TestGetCurrentUserIDAcceptsNumericTypes(t *testing.T) {
	for _, v := range []any{int(9), int64(9), float64(9), uint(9)} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("userID", v)
		uid, ok := getCurrentUserID(c)
		if !ok || uid != 9 {
			t.Fatalf("value %T(%v): got (%d, %t)", v, v, uid, ok)
		}
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("userID", "9")
	if _, ok := getCurrentUserID(c); ok {
		t.Fatal("string identity must be rejected")
	}
}
