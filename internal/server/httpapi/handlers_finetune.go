package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/accordai/gateway/internal/server/models"
)

type StartJobRequest struct {
	ModelName    string  `json:"model_name"`
	BaseModel    string  `json:"base_model"`
	Epochs       int     `json:"epochs"`
	LearningRate float64 `json:"learning_rate"`
}

type TrainingImageResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
}

type JobResponse struct {
	ID                  string     `json:"id"`
	ModelName           string     `json:"model_name"`
	BaseModel           string     `json:"base_model"`
	Status              string     `json:"status"`
	Progress            int        `json:"progress"`
	Epochs              int        `json:"epochs"`
	LearningRate        float64    `json:"learning_rate"`
	TrainingImagesCount int        `json:"training_images_count"`
	CreatedBy           string     `json:"created_by"`
	CreatedAt           time.Time  `json:"created_at"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	Error               *string    `json:"error,omitempty"`
}

func toJobResponse(j *models.FineTuneJob) JobResponse {
	return JobResponse{
		ID:                  j.ID,
		ModelName:           j.ModelName,
		BaseModel:           j.BaseModel,
		Status:              j.Status,
		Progress:            j.Progress,
		Epochs:              j.Epochs,
		LearningRate:        j.LearningRate,
		TrainingImagesCount: j.TrainingImagesCount,
		CreatedBy:           j.CreatedBy,
		CreatedAt:           j.CreatedAt,
		StartedAt:           j.StartedAt,
		CompletedAt:         j.CompletedAt,
		Error:               j.Error,
	}
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	filename, data, err := s.readUpload(w, r, "file")
	if err != nil {
		writeError(w, err)
		return
	}

	img, err := s.finetune.UploadTrainingImage(r.Context(), filename, data,
		r.FormValue("prompt"), r.FormValue("expected_output"), id.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TrainingImageResponse{
		ID:        img.ID,
		Filename:  img.Filename,
		SizeBytes: img.SizeBytes,
		Format:    img.Format,
		CreatedAt: img.CreatedAt,
	})
}

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var req StartJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "invalid_json"})
		return
	}

	job, err := s.finetune.StartJob(r.Context(), req.ModelName, req.BaseModel,
		req.Epochs, req.LearningRate, id.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toJobResponse(job))
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.finetune.JobStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	jobs, err := s.finetune.ListJobs(r.Context(), q.Get("status"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": out, "count": len(out)})
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.finetune.CancelJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(job))
}

func (s *Server) handleImageURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.finetune.TrainingImageURL(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
