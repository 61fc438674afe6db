package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/accordai/gateway/internal/common"
	"github.com/accordai/gateway/internal/server/services"
)

type AskTextRequest struct {
	Question string `json:"question"`
}

type AnswerResponse struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Model      string `json:"model"`
	Filename   string `json:"filename,omitempty"`
	Pages      int    `json:"pages,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

func toAnswerResponse(res *services.QAResult) AnswerResponse {
	return AnswerResponse{
		Question:   res.Question,
		Answer:     res.Answer,
		Model:      res.Model,
		Filename:   res.Filename,
		Pages:      res.Pages,
		Resolution: res.Resolution,
	}
}

// readUpload pulls one file plus form fields out of a multipart request.
// Bodies over the upload cap surface as common.ErrFileTooLarge.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, common.ErrFileTooLarge
		}
		return "", nil, common.ErrValidation
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, common.ErrValidation
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, common.ErrFileTooLarge
		}
		return "", nil, common.ErrValidation
	}
	if int64(len(data)) > s.maxUploadBytes {
		return "", nil, common.ErrFileTooLarge
	}

	return header.Filename, data, nil
}

func (s *Server) handleAskText(w http.ResponseWriter, r *http.Request) {
	var req AskTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "invalid_json"})
		return
	}

	res, err := s.qa.AskText(r.Context(), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnswerResponse(res))
}

func (s *Server) handleAskImage(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r, "file")
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.qa.AskImage(r.Context(), filename, data, r.FormValue("question"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnswerResponse(res))
}

func (s *Server) handleAskPDF(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r, "file")
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.qa.AskPDF(r.Context(), filename, data, r.FormValue("question"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnswerResponse(res))
}
