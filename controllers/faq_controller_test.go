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
	"github.com/meridian-ca/meridian-ca-api/models"
)

func TestListFAQs_Ordering(t *testing.T) {
	db := setupCatalogTestDB(t)
	config.SetDB(db)

	db.Create(&models.FAQ{Question: "Second?", Answer: "a", DisplayOrder: 2})
	db.Create(&models.FAQ{Question: "First?", Answer: "a", DisplayOrder: 1})

	router := setupTestRouter()
	router.GET("/faqs", ListFAQs)

	req, _ := http.NewRequest(http.MethodGet, "/faqs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
	assert.Equal(t, "First?", data[0].(map[string]interface{})["question"])
	assert.Equal(t, "Second?", data[1].(map[string]interface{})["question"])
}

func TestCreateFAQ(t *testing.T) {
	db := setupCatalogTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.POST("/admin/faqs", CreateFAQ)

	body, _ := json.Marshal(map[string]interface{}{
		"question":      "Do you handle GST filings?",
		"answer":        "Yes, quarterly and annual.",
		"display_order": 3,
	})
	req, _ := http.NewRequest(http.MethodPost, "/admin/faqs", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Do you handle GST filings?", data["question"])
	assert.Equal(t, float64(3), data["display_order"])

	// Missing answer is rejected
	body, _ = json.Marshal(map[string]interface{}{"question": "No answer?"})
	req, _ = http.NewRequest(http.MethodPost, "/admin/faqs", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateFAQ(t *testing.T) {
	db := setupCatalogTestDB(t)
	config.SetDB(db)

	faq := models.FAQ{Question: "Old question?", Answer: "Old answer", DisplayOrder: 1}
	db.Create(&faq)

	router := setupTestRouter()
	router.PUT("/admin/faqs/:id", UpdateFAQ)

	body, _ := json.Marshal(map[string]interface{}{"answer": "New answer"})
	req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("/admin/faqs/%d", faq.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.FAQ
	db.First(&stored, faq.ID)
	assert.Equal(t, "New answer", stored.Answer)
	assert.Equal(t, "Old question?", stored.Question)

	// Unknown FAQ
	req, _ = http.NewRequest(http.MethodPut, "/admin/faqs/9999", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteFAQ(t *testing.T) {
	db := setupCatalogTestDB(t)
	config.SetDB(db)

	faq := models.FAQ{Question: "Q?", Answer: "A"}
	db.Create(&faq)

	router := setupTestRouter()
	router.DELETE("/admin/faqs/:id", DeleteFAQ)

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/faqs/%d", faq.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.FAQ{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
