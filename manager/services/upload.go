package services

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"rentdesk/manager/auth"
	"rentdesk/utils"

	"github.com/go-chi/chi/v5"
)

const maxUploadSize = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadService converts uploaded contract scans into base64 data uris
// so they can be stored inline on the contract row. There is no blob
// store to coordinate with the database this way.
type UploadService struct {
	userAuth auth.IdentityProvider
}

func (s *UploadService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.userAuth.AuthMiddleware()...)

	r.Post("/contract", s.UploadContractImage)

	return r
}

type uploadResponse struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
}

func (s *UploadService) UploadContractImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+4096)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("error parsing multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("contract")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "a file named 'contract' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("error reading uploaded file: %v", err))
		return
	}

	if len(data) > maxUploadSize {
		utils.WriteError(w, http.StatusBadRequest, "uploaded file exceeds the 10MB limit")
		return
	}

	// Sniff the content instead of trusting the client provided type.
	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		utils.WriteError(w, http.StatusBadRequest, "only jpeg, png, gif and webp images are supported")
		return
	}

	dataUri := fmt.Sprintf("data:%v;base64,%v", contentType, base64.StdEncoding.EncodeToString(data))

	utils.WriteDataMessage(w, uploadResponse{Image: dataUri, Filename: header.Filename}, "file uploaded successfully")
}
