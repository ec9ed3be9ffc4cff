package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/models"
)

func TestGetAdminStats(t *testing.T) {
	db := setupUserTestDB(t)
	config.SetDB(db)

	alice := createTestUser(db, "auth0|alice", "alice@example.com", models.RoleUser)
	createTestUser(db, "auth0|admin", testAdminEmail, models.RoleAdmin)

	tax := createTestService(db, "Tax Filing", models.ServiceAvailable)
	createTestService(db, "Payroll", models.ServiceStartingSoon)

	mk := func(status string, seen bool) {
		db.Create(&models.ServiceRequest{
			UserID:      alice.ID,
			UserEmail:   alice.Email,
			UserName:    alice.DisplayName,
			ServiceID:   tax.ID,
			ServiceName: tax.Title,
			Message:     "m",
			Status:      status,
			SeenByAdmin: seen,
			RequestedAt: time.Now(),
		})
	}
	mk(models.RequestPending, false)
	mk(models.RequestPending, true)
	mk(models.RequestInProgress, true)
	mk(models.RequestResolved, false)

	router := setupTestRouter()
	router.GET("/admin/stats", GetAdminStats)

	req, _ := http.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["total_requests"])
	assert.Equal(t, float64(2), data["pending_requests"])
	assert.Equal(t, float64(1), data["in_progress_requests"])
	assert.Equal(t, float64(1), data["resolved_requests"])
	assert.Equal(t, float64(2), data["unseen_requests"])
	assert.Equal(t, float64(2), data["total_users"])
	assert.Equal(t, float64(2), data["total_services"])
}

func TestGetAdminStats_EmptyDatabase(t *testing.T) {
	db := setupUserTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.GET("/admin/stats", GetAdminStats)

	req, _ := http.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total_requests"])
	assert.Equal(t, float64(0), data["unseen_requests"])
	assert.Equal(t, float64(0), data["total_users"])
}
