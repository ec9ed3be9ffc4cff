package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/models"
	"github.com/meridian-ca/meridian-ca-api/services"
)

const testAdminEmail = "admin@meridianca.com"

// setupRequestTest wires a test database and a mock email sender behind the
// request notifier, returning both for assertions
func setupRequestTest(t *testing.T) (*gorm.DB, *services.MockEmailService) {
	db := setupUserTestDB(t)
	config.SetDB(db)
	services.SetSessionManager(nil)
	services.SetPhotoService(nil)

	mockSender := services.NewMockEmailService()
	services.SetRequestNotifier(services.NewRequestNotifier(mockSender, testAdminEmail, zap.NewNop()))

	return db, mockSender
}

func createTestUser(db *gorm.DB, auth0ID, email string, role string) models.User {
	user := models.User{
		Auth0ID:     auth0ID,
		DisplayName: "Test User",
		Email:       email,
		Role:        role,
	}
	db.Create(&user)
	return user
}

func createTestService(db *gorm.DB, title, status string) models.Service {
	service := models.Service{
		Title:       title,
		Description: "Description of " + title,
		Status:      status,
	}
	db.Create(&service)
	return service
}

func TestCreateRequest(t *testing.T) {
	db, mockSender := setupRequestTest(t)

	user := createTestUser(db, "auth0|alice", "alice@example.com", models.RoleUser)
	available := createTestService(db, "Tax Filing", models.ServiceAvailable)
	startingSoon := createTestService(db, "Payroll", models.ServiceStartingSoon)
	notAvailable := createTestService(db, "Audit Support", models.ServiceNotAvailable)

	tests := []struct {
		name           string
		auth0ID        string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:    "Successfully create request for available service",
			auth0ID: user.Auth0ID,
			requestBody: map[string]interface{}{
				"service_id": available.ID,
				"message":    "I need help with my annual return",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:    "Reject request for starting_soon service",
			auth0ID: user.Auth0ID,
			requestBody: map[string]interface{}{
				"service_id": startingSoon.ID,
				"message":    "Sign me up early",
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "SERVICE_UNAVAILABLE",
		},
		{
			name:    "Reject request for not_available service",
			auth0ID: user.Auth0ID,
			requestBody: map[string]interface{}{
				"service_id": notAvailable.ID,
				"message":    "Please",
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "SERVICE_UNAVAILABLE",
		},
		{
			name:    "Reject request for unknown service",
			auth0ID: user.Auth0ID,
			requestBody: map[string]interface{}{
				"service_id": 9999,
				"message":    "Hello",
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "SERVICE_NOT_FOUND",
		},
		{
			name:    "Reject request with missing message",
			auth0ID: user.Auth0ID,
			requestBody: map[string]interface{}{
				"service_id": available.ID,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:    "Reject request without a profile",
			auth0ID: "auth0|stranger",
			requestBody: map[string]interface{}{
				"service_id": available.ID,
				"message":    "Hello",
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "USER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSender.Clear()

			router := setupTestRouter()
			router.POST("/requests", mockAuthMiddleware(tt.auth0ID, "mock-token"), CreateRequest)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/requests", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
				assert.Empty(t, mockSender.Sent(), "rejected requests must not notify anyone")
				return
			}

			data := response["data"].(map[string]interface{})
			assert.Equal(t, "pending", data["status"])
			assert.Equal(t, false, data["seen_by_admin"])
			assert.Nil(t, data["resolved_at"])
			assert.Equal(t, user.Email, data["user_email"])
			assert.Equal(t, user.DisplayName, data["user_name"])
			assert.Equal(t, available.Title, data["service_name"])

			requestedAt, err := time.Parse(time.RFC3339, data["requested_at"].(string))
			assert.NoError(t, err)
			assert.WithinDuration(t, time.Now(), requestedAt, 5*time.Second)

			// One email to the admin, one confirmation to the requester
			sent := mockSender.Sent()
			assert.Len(t, sent, 2)
			assert.Equal(t, testAdminEmail, sent[0].To)
			assert.Contains(t, sent[0].Subject, available.Title)
			assert.Equal(t, user.Email, sent[1].To)
			assert.Contains(t, sent[1].HTML, available.Title)
		})
	}
}

func TestCreateRequest_EmailFailureDoesNotFailWrite(t *testing.T) {
	db, mockSender := setupRequestTest(t)
	mockSender.FailWith(fmt.Errorf("provider down"))

	user := createTestUser(db, "auth0|alice", "alice@example.com", models.RoleUser)
	service := createTestService(db, "Tax Filing", models.ServiceAvailable)

	router := setupTestRouter()
	router.POST("/requests", mockAuthMiddleware(user.Auth0ID, "mock-token"), CreateRequest)

	body, _ := json.Marshal(map[string]interface{}{
		"service_id": service.ID,
		"message":    "I need help",
	})
	req, _ := http.NewRequest(http.MethodPost, "/requests", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.ServiceRequest{}).Count(&count)
	assert.Equal(t, int64(1), count, "the request is stored even when delivery fails")
}

func TestListMyRequests(t *testing.T) {
	db, _ := setupRequestTest(t)

	alice := createTestUser(db, "auth0|alice", "alice@example.com", models.RoleUser)
	bob := createTestUser(db, "auth0|bob", "bob@example.com", models.RoleUser)
	service := createTestService(db, "Tax Filing", models.ServiceAvailable)

	now := time.Now()
	mk := func(u models.User, requestedAt time.Time, message string) {
		db.Create(&models.ServiceRequest{
			UserID:      u.ID,
			UserEmail:   u.Email,
			UserName:    u.DisplayName,
			ServiceID:   service.ID,
			ServiceName: service.Title,
			Message:     message,
			Status:      models.RequestPending,
			RequestedAt: requestedAt,
		})
	}
	mk(alice, now.Add(-2*time.Hour), "oldest")
	mk(alice, now, "newest")
	mk(alice, now.Add(-1*time.Hour), "middle")
	mk(bob, now, "bob's request")

	router := setupTestRouter()
	router.GET("/requests", mockAuthMiddleware(alice.Auth0ID, "mock-token"), ListMyRequests)

	req, _ := http.NewRequest(http.MethodGet, "/requests", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].([]interface{})
	assert.Len(t, data, 3, "only the caller's requests are listed")

	// Newest first
	first := data[0].(map[string]interface{})
	last := data[2].(map[string]interface{})
	assert.Equal(t, "newest", first["message"])
	assert.Equal(t, "oldest", last["message"])
}

func TestGetRequest_Access(t *testing.T) {
	db, _ := setupRequestTest(t)

	owner := createTestUser(db, "auth0|owner", "owner@example.com", models.RoleUser)
	other := createTestUser(db, "auth0|other", "other@example.com", models.RoleUser)
	admin := createTestUser(db, "auth0|admin", testAdminEmail, models.RoleAdmin)
	service := createTestService(db, "Tax Filing", models.ServiceAvailable)

	request := models.ServiceRequest{
		UserID:      owner.ID,
		UserEmail:   owner.Email,
		UserName:    owner.DisplayName,
		ServiceID:   service.ID,
		ServiceName: service.Title,
		Message:     "help",
		Status:      models.RequestPending,
		RequestedAt: time.Now(),
	}
	db.Create(&request)

	tests := []struct {
		name           string
		auth0ID        string
		requestID      string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Owner can view their request",
			auth0ID:        owner.Auth0ID,
			requestID:      fmt.Sprintf("%d", request.ID),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Admin can view any request",
			auth0ID:        admin.Auth0ID,
			requestID:      fmt.Sprintf("%d", request.ID),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Other users get forbidden",
			auth0ID:        other.Auth0ID,
			requestID:      fmt.Sprintf("%d", request.ID),
			expectedStatus: http.StatusForbidden,
			expectedError:  "FORBIDDEN",
		},
		{
			name:           "Unknown request",
			auth0ID:        owner.Auth0ID,
			requestID:      "9999",
			expectedStatus: http.StatusNotFound,
			expectedError:  "REQUEST_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/requests/:id", mockAuthMiddleware(tt.auth0ID, "mock-token"), GetRequest)

			req, _ := http.NewRequest(http.MethodGet, "/requests/"+tt.requestID, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				var response map[string]interface{}
				json.Unmarshal(w.Body.Bytes(), &response)
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}
		})
	}
}

func TestListAllRequests_StatusFilter(t *testing.T) {
	db, _ := setupRequestTest(t)

	user := createTestUser(db, "auth0|alice", "alice@example.com", models.RoleUser)
	service := createTestService(db, "Tax Filing", models.ServiceAvailable)

	statuses := []string{
		models.RequestPending, models.RequestPending,
		models.RequestInProgress,
		models.RequestResolved, models.RequestResolved, models.RequestResolved,
	}
	for i, status := range statuses {
		db.Create(&models.ServiceRequest{
			UserID:      user.ID,
			UserEmail:   user.Email,
			UserName:    user.DisplayName,
			ServiceID:   service.ID,
			ServiceName: service.Title,
			Message:     fmt.Sprintf("request %d", i),
			Status:      status,
			RequestedAt: time.Now().Add(time.Duration(-i) * time.Minute),
		})
	}

	router := setupTestRouter()
	router.GET("/admin/requests", ListAllRequests)

	fetch := func(query string) (int, []interface{}) {
		req, _ := http.NewRequest(http.MethodGet, "/admin/requests"+query, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data, _ := response["data"].([]interface{})
		return w.Code, data
	}

	code, all := fetch("")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, all, 6)

	code, pending := fetch("?status=pending")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, pending, 2)

	code, inProgress := fetch("?status=in_progress")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, inProgress, 1)

	code, resolved := fetch("?status=resolved")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, resolved, 3)

	// The three filtered views partition the full list
	assert.Equal(t, len(all), len(pending)+len(inProgress)+len(resolved))

	code, _ = fetch("?status=bogus")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUpdateRequest_StatusTransitions(t *testing.T) {
	db, mockSender := setupRequestTest(t)

	user := createTestUser(db, "auth0|alice", "alice@example.com", models.RoleUser)
	service := createTestService(db, "Tax Filing", models.ServiceAvailable)

	request := models.ServiceRequest{
		UserID:      user.ID,
		UserEmail:   user.Email,
		UserName:    user.DisplayName,
		ServiceID:   service.ID,
		ServiceName: service.Title,
		Message:     "help",
		Status:      models.RequestPending,
		RequestedAt: time.Now(),
	}
	db.Create(&request)

	router := setupTestRouter()
	router.PATCH("/admin/requests/:id", UpdateRequest)

	patch := func(body map[string]interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
		raw, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPatch, fmt.Sprintf("/admin/requests/%d", request.ID), bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		return w, response
	}

	// pending -> in_progress notifies the requester once
	mockSender.Clear()
	w, response := patch(map[string]interface{}{"status": "in_progress"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "in_progress", data["status"])
	assert.Nil(t, data["resolved_at"])

	sent := mockSender.Sent()
	assert.Len(t, sent, 1)
	assert.Equal(t, user.Email, sent[0].To)
	assert.Contains(t, sent[0].HTML, "In Progress")

	// in_progress -> resolved stamps resolved_at
	mockSender.Clear()
	w, response = patch(map[string]interface{}{"status": "resolved"})
	assert.Equal(t, http.StatusOK, w.Code)
	data = response["data"].(map[string]interface{})
	assert.Equal(t, "resolved", data["status"])
	assert.NotNil(t, data["resolved_at"])
	resolvedAt := data["resolved_at"].(string)

	sent = mockSender.Sent()
	assert.Len(t, sent, 1)
	assert.Contains(t, sent[0].HTML, "Resolved")

	// Reopening keeps the previous resolution stamp
	mockSender.Clear()
	w, response = patch(map[string]interface{}{"status": "pending"})
	assert.Equal(t, http.StatusOK, w.Code)
	data = response["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, resolvedAt, data["resolved_at"])
	assert.Len(t, mockSender.Sent(), 1)

	// Same status again is not a transition
	mockSender.Clear()
	w, _ = patch(map[string]interface{}{"status": "pending"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mockSender.Sent())

	// Invalid status is rejected
	w, response = patch(map[string]interface{}{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_STATUS", errorData["code"])
}

func TestUpdateRequest_NotesAndEstimate(t *testing.T) {
	db, mockSender := setupRequestTest(t)

	user := createTestUser(db, "auth0|alice", "alice@example.com", models.RoleUser)
	service := createTestService(db, "Tax Filing", models.ServiceAvailable)

	request := models.ServiceRequest{
		UserID:      user.ID,
		UserEmail:   user.Email,
		UserName:    user.DisplayName,
		ServiceID:   service.ID,
		ServiceName: service.Title,
		Message:     "help",
		Status:      models.RequestPending,
		RequestedAt: time.Now(),
	}
	db.Create(&request)

	router := setupTestRouter()
	router.PATCH("/admin/requests/:id", UpdateRequest)

	// Notes-only edits are silent
	body, _ := json.Marshal(map[string]interface{}{"admin_notes": "waiting on documents"})
	req, _ := http.NewRequest(http.MethodPatch, fmt.Sprintf("/admin/requests/%d", request.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mockSender.Sent())

	var stored models.ServiceRequest
	db.First(&stored, request.ID)
	assert.NotNil(t, stored.AdminNotes)
	assert.Equal(t, "waiting on documents", *stored.AdminNotes)

	// Estimate plus a status change delivers the estimate in the email
	body, _ = json.Marshal(map[string]interface{}{
		"status":         "in_progress",
		"estimated_time": "2 weeks",
	})
	req, _ = http.NewRequest(http.MethodPatch, fmt.Sprintf("/admin/requests/%d", request.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	sent := mockSender.Sent()
	assert.Len(t, sent, 1)
	assert.Contains(t, sent[0].HTML, "2 weeks")
}

func TestUpdateRequest_NotFound(t *testing.T) {
	_, _ = setupRequestTest(t)

	router := setupTestRouter()
	router.PATCH("/admin/requests/:id", UpdateRequest)

	body, _ := json.Marshal(map[string]interface{}{"status": "resolved"})
	req, _ := http.NewRequest(http.MethodPatch, "/admin/requests/9999", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "REQUEST_NOT_FOUND", errorData["code"])
}

func TestMarkRequestSeen(t *testing.T) {
	db, mockSender := setupRequestTest(t)

	user := createTestUser(db, "auth0|alice", "alice@example.com", models.RoleUser)
	service := createTestService(db, "Tax Filing", models.ServiceAvailable)

	request := models.ServiceRequest{
		UserID:      user.ID,
		UserEmail:   user.Email,
		UserName:    user.DisplayName,
		ServiceID:   service.ID,
		ServiceName: service.Title,
		Message:     "help",
		Status:      models.RequestPending,
		SeenByAdmin: false,
		RequestedAt: time.Now(),
	}
	db.Create(&request)

	router := setupTestRouter()
	router.PATCH("/admin/requests/:id/seen", MarkRequestSeen)

	markSeen := func() *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPatch, fmt.Sprintf("/admin/requests/%d/seen", request.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// First flip notifies the requester
	w := markSeen()
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.ServiceRequest
	db.First(&stored, request.ID)
	assert.True(t, stored.SeenByAdmin)

	sent := mockSender.Sent()
	assert.Len(t, sent, 1)
	assert.Equal(t, user.Email, sent[0].To)
	assert.Contains(t, sent[0].HTML, "reviewed")

	// Repeat calls are idempotent and silent
	mockSender.Clear()
	w = markSeen()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mockSender.Sent())

	db.First(&stored, request.ID)
	assert.True(t, stored.SeenByAdmin)
}

func TestMarkRequestSeen_NotFound(t *testing.T) {
	_, _ = setupRequestTest(t)

	router := setupTestRouter()
	router.PATCH("/admin/requests/:id/seen", MarkRequestSeen)

	req, _ := http.NewRequest(http.MethodPatch, "/admin/requests/9999/seen", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
