// Package httpapi exposes the gateway over REST. Routes live under /api/v1;
// everything except signup, login and the health probe requires a Bearer
// token.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/accordai/gateway/internal/logging"
	"github.com/accordai/gateway/internal/server/config"
	"github.com/accordai/gateway/internal/server/models"
	"github.com/accordai/gateway/internal/server/pii"
	"github.com/accordai/gateway/internal/server/services"
)

// UserProvider is the slice of UserService the handlers need.
type UserProvider interface {
	Register(ctx context.Context, username, email, phone, password string) (*services.AuthResult, error)
	Login(ctx context.Context, login, password string) (*services.AuthResult, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// QAProvider answers questions, optionally grounded in an attachment.
type QAProvider interface {
	AskText(ctx context.Context, question string) (*services.QAResult, error)
	AskImage(ctx context.Context, filename string, data []byte, question string) (*services.QAResult, error)
	AskPDF(ctx context.Context, filename string, data []byte, question string) (*services.QAResult, error)
}

// FineTuneProvider manages the training dataset and job metadata.
type FineTuneProvider interface {
	UploadTrainingImage(ctx context.Context, filename string, data []byte, prompt, expectedOutput, uploadedBy string) (*models.TrainingImage, error)
	TrainingImageURL(ctx context.Context, id string) (string, error)
	StartJob(ctx context.Context, modelName, baseModel string, epochs int, learningRate float64, createdBy string) (*models.FineTuneJob, error)
	JobStatus(ctx context.Context, id string) (*models.FineTuneJob, error)
	ListJobs(ctx context.Context, status string, limit, offset int) ([]*models.FineTuneJob, error)
	CancelJob(ctx context.Context, id string) (*models.FineTuneJob, error)
}

// GeminiFileProvider manages images pushed to the Gemini File API.
type GeminiFileProvider interface {
	UploadFile(ctx context.Context, filename string, data []byte, username, email string) (*models.GeminiFile, error)
	ListFiles(ctx context.Context, page, pageSize int) (*services.GeminiFilePage, error)
	GetFile(ctx context.Context, id string) (*models.GeminiFile, error)
	DeleteFile(ctx context.Context, id string) error
}

type Server struct {
	srv *http.Server

	db          *sql.DB
	users       UserProvider
	qa          QAProvider
	finetune    FineTuneProvider
	geminiFiles GeminiFileProvider
	logger      logging.Logger

	maxUploadBytes int64
}

// New assembles the route table and the outer middleware chain.
func New(cfg *config.Config, db *sql.DB, users UserProvider, qa QAProvider, finetune FineTuneProvider, geminiFiles GeminiFileProvider, logger logging.Logger) *Server {

	s := &Server{
		db:             db,
		users:          users,
		qa:             qa,
		finetune:       finetune,
		geminiFiles:    geminiFiles,
		logger:         logger,
		maxUploadBytes: cfg.MaxUploadBytes,
	}

	guard := RequireAuth([]byte(cfg.SecretKey))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.Handle("GET /api/v1/auth/me", guard(http.HandlerFunc(s.handleMe)))

	mux.Handle("POST /api/v1/qa/text", guard(http.HandlerFunc(s.handleAskText)))
	mux.Handle("POST /api/v1/qa/image", guard(http.HandlerFunc(s.handleAskImage)))
	mux.Handle("POST /api/v1/qa/pdf", guard(http.HandlerFunc(s.handleAskPDF)))

	mux.Handle("POST /api/v1/finetune/upload-image", guard(http.HandlerFunc(s.handleUploadImage)))
	mux.Handle("POST /api/v1/finetune/start", guard(http.HandlerFunc(s.handleStartJob)))
	mux.Handle("GET /api/v1/finetune/status/{id}", guard(http.HandlerFunc(s.handleJobStatus)))
	mux.Handle("GET /api/v1/finetune/jobs", guard(http.HandlerFunc(s.handleListJobs)))
	mux.Handle("DELETE /api/v1/finetune/jobs/{id}", guard(http.HandlerFunc(s.handleCancelJob)))
	mux.Handle("GET /api/v1/finetune/images/{id}/url", guard(http.HandlerFunc(s.handleImageURL)))

	mux.Handle("POST /api/v1/gemini-files/upload", guard(http.HandlerFunc(s.handleGeminiFileUpload)))
	mux.Handle("GET /api/v1/gemini-files", guard(http.HandlerFunc(s.handleGeminiFileList)))
	mux.Handle("GET /api/v1/gemini-files/{id}", guard(http.HandlerFunc(s.handleGeminiFileGet)))
	mux.Handle("DELETE /api/v1/gemini-files/{id}", guard(http.HandlerFunc(s.handleGeminiFileDelete)))

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	var redactor *pii.Redactor
	if cfg.PIIRedactionEnabled {
		redactor = pii.NewRedactor(cfg.PIIPatterns)
	}

	s.srv = &http.Server{
		Addr:         cfg.EndpointAddr,
		Handler:      RequestLogging(logger, redactor)(mux),
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the fully wired handler chain.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
