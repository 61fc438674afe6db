package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/accordai/gateway/internal/server/models"
	"github.com/accordai/gateway/internal/server/services"
)

type GeminiFileResponse struct {
	ID               string    `json:"id"`
	GeminiName       string    `json:"gemini_name"`
	GeminiURI        string    `json:"gemini_uri"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	SizeBytes        int64     `json:"size_bytes"`
	SHA256Hash       *string   `json:"sha256_hash,omitempty"`
	State            string    `json:"state"`
	Source           string    `json:"source"`
	ExpirationTime   *string   `json:"expiration_time,omitempty"`
	UploadedBy       string    `json:"uploaded_by"`
	UpdatedBy        string    `json:"updated_by"`
	UploadedAt       time.Time `json:"uploaded_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type PaginationResponse struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

func toGeminiFileResponse(f *models.GeminiFile) GeminiFileResponse {
	return GeminiFileResponse{
		ID:               f.ID,
		GeminiName:       f.GeminiName,
		GeminiURI:        f.GeminiURI,
		OriginalFilename: f.OriginalFilename,
		MimeType:         f.MimeType,
		SizeBytes:        f.SizeBytes,
		SHA256Hash:       f.SHA256Hash,
		State:            f.State,
		Source:           f.Source,
		ExpirationTime:   f.ExpirationTime,
		UploadedBy:       f.UploadedBy,
		UpdatedBy:        f.UpdatedBy,
		UploadedAt:       f.UploadedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func toPaginationResponse(p *services.GeminiFilePage) PaginationResponse {
	return PaginationResponse{
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalCount:  p.TotalCount,
		TotalPages:  p.TotalPages,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
	}
}

func (s *Server) handleGeminiFileUpload(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	filename, data, err := s.readUpload(w, r, "file")
	if err != nil {
		writeError(w, err)
		return
	}

	// attribution follows the authenticated account, not form input
	user, err := s.users.GetByID(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	file, err := s.geminiFiles.UploadFile(r.Context(), filename, data, user.Username, user.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGeminiFileResponse(file))
}

func (s *Server) handleGeminiFileList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	res, err := s.geminiFiles.ListFiles(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]GeminiFileResponse, 0, len(res.Files))
	for _, f := range res.Files {
		out = append(out, toGeminiFileResponse(f))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       out,
		"pagination": toPaginationResponse(res),
	})
}

func (s *Server) handleGeminiFileGet(w http.ResponseWriter, r *http.Request) {
	file, err := s.geminiFiles.GetFile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGeminiFileResponse(file))
}

func (s *Server) handleGeminiFileDelete(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("id")
	if err := s.geminiFiles.DeleteFile(r.Context(), fileID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"file_id": fileID,
		"message": "file record deleted",
		"note":    "the remote file expires on its own schedule",
	})
}
