package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// makeFileHeader builds a real multipart.FileHeader by round-tripping a form
// through gin's request parsing
func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		t.Fatalf("Failed to parse form file: %v", err)
	}
	return fileHeader
}

func TestS3PhotoService_UploadPhoto(t *testing.T) {
	mockS3 := NewMockS3Service()
	photoService := InitPhotoService(mockS3)
	defer SetPhotoService(nil)

	key, err := photoService.UploadPhoto(makeFileHeader(t, "avatar.png", []byte("png bytes")))
	assert.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.True(t, mockS3.FileExists(key))

	url, err := photoService.GetPhotoURL(key)
	assert.NoError(t, err)
	assert.Contains(t, url, key)

	assert.NoError(t, photoService.DeletePhoto(key))
	assert.False(t, mockS3.FileExists(key))
}

func TestS3PhotoService_RejectsInvalidFormat(t *testing.T) {
	mockS3 := NewMockS3Service()
	photoService := InitPhotoService(mockS3)
	defer SetPhotoService(nil)

	_, err := photoService.UploadPhoto(makeFileHeader(t, "notes.txt", []byte("plain text")))
	assert.Error(t, err)
}

func TestS3PhotoService_EmptyKeyIsNoop(t *testing.T) {
	photoService := InitPhotoService(NewMockS3Service())
	defer SetPhotoService(nil)

	url, err := photoService.GetPhotoURL("")
	assert.NoError(t, err)
	assert.Empty(t, url)

	assert.NoError(t, photoService.DeletePhoto(""))
}
