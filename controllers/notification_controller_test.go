package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/services"
)

func TestSendNotification(t *testing.T) {
	mockSender := services.NewMockEmailService()
	mockSender.SetAsMockForTesting()
	defer services.SetEmailService(nil)

	config.SetConfig(&config.Config{AdminEmail: testAdminEmail})

	router := setupTestRouter()
	router.POST("/notifications", SendNotification)

	body, _ := json.Marshal(map[string]interface{}{
		"type":      "new_request",
		"service":   "Tax Filing",
		"userName":  "Alice Accountant",
		"userEmail": "alice@example.com",
		"requestId": 42,
	})
	req, _ := http.NewRequest(http.MethodPost, "/notifications", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response["success"].(bool))
	assert.Equal(t, "Notifications sent", response["message"])

	sent := mockSender.Sent()
	assert.Len(t, sent, 2)
	assert.Equal(t, testAdminEmail, sent[0].To)
	assert.Contains(t, sent[0].HTML, "Alice Accountant")
	assert.Contains(t, sent[0].HTML, "42")
	assert.Equal(t, "alice@example.com", sent[1].To)
	assert.Contains(t, sent[1].HTML, "Tax Filing")
}

func TestSendNotification_InvalidType(t *testing.T) {
	mockSender := services.NewMockEmailService()
	mockSender.SetAsMockForTesting()
	defer services.SetEmailService(nil)

	config.SetConfig(&config.Config{AdminEmail: testAdminEmail})

	router := setupTestRouter()
	router.POST("/notifications", SendNotification)

	body, _ := json.Marshal(map[string]interface{}{
		"type":      "request_deleted",
		"service":   "Tax Filing",
		"userName":  "Alice",
		"userEmail": "alice@example.com",
	})
	req, _ := http.NewRequest(http.MethodPost, "/notifications", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.False(t, response["success"].(bool))
	assert.Equal(t, "Invalid notification type", response["message"])
	assert.Empty(t, mockSender.Sent())
}

func TestSendNotification_SendFailure(t *testing.T) {
	mockSender := services.NewMockEmailService()
	mockSender.SetAsMockForTesting()
	mockSender.FailWith(fmt.Errorf("provider down"))
	defer services.SetEmailService(nil)

	config.SetConfig(&config.Config{AdminEmail: testAdminEmail})

	router := setupTestRouter()
	router.POST("/notifications", SendNotification)

	body, _ := json.Marshal(map[string]interface{}{
		"type":      "new_request",
		"service":   "Tax Filing",
		"userName":  "Alice",
		"userEmail": "alice@example.com",
		"requestId": 1,
	})
	req, _ := http.NewRequest(http.MethodPost, "/notifications", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.False(t, response["success"].(bool))
}

func TestSendNotification_MissingType(t *testing.T) {
	router := setupTestRouter()
	router.POST("/notifications", SendNotification)

	req, _ := http.NewRequest(http.MethodPost, "/notifications", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
