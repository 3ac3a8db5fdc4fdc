// Package api exposes the ingestion pipeline over HTTP.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/parsererror"
	"inmova/bank-import/internal/pipeline"
	"inmova/bank-import/internal/textdecode"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DefaultMaxUploadBytes bounds an uploaded statement when no limit is set.
const DefaultMaxUploadBytes int64 = 10 << 20

// Server handles statement uploads.
type Server struct {
	pipeline       *pipeline.Pipeline
	companies      pipeline.CompanyDirectory
	sink           pipeline.StatementSink
	maxUploadBytes int64
	logger         logging.Logger
}

// NewServer creates a Server. sink may be nil, in which case nothing is
// persisted.
func NewServer(p *pipeline.Pipeline, companies pipeline.CompanyDirectory, sink pipeline.StatementSink, maxUploadBytes int64, logger logging.Logger) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Server{
		pipeline:       p,
		companies:      companies,
		sink:           sink,
		maxUploadBytes: maxUploadBytes,
		logger:         logging.OrDefault(logger),
	}
}

// NewRouter registers the routes.
func (s *Server) NewRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	router.HandleFunc("/api/bank-statements/detect", s.detect).Methods(http.MethodPost)
	router.HandleFunc("/api/bank-statements/import", s.importStatements).Methods(http.MethodPost)
	router.HandleFunc("/api/companies/{companyId}/bank-statements/import", s.importStatements).Methods(http.MethodPost)

	return router
}

// DetectResponse is returned by the detect endpoint.
type DetectResponse struct {
	Success  bool                `json:"success"`
	Format   models.Format       `json:"format"`
	Encoding textdecode.Encoding `json:"encoding"`
}

// ImportResponse is returned by the import endpoints.
type ImportResponse struct {
	Success     bool                `json:"success"`
	ImportID    string              `json:"importId"`
	Format      models.Format       `json:"format"`
	Encoding    textdecode.Encoding `json:"encoding"`
	NeedsReview bool                `json:"needsReview"`
	Statements  []ImportedStatement `json:"statements"`
}

// ImportedStatement is one statement of an import.
type ImportedStatement struct {
	pipeline.StatementResult
	ReviewReasons []pipeline.ReviewReason `json:"reviewReasons"`
	// SavedStatementID is set when the statement was persisted.
	SavedStatementID string `json:"savedStatementId,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": "ok"})
}

func (s *Server) detect(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	format, encoding, err := s.pipeline.Detect(raw)
	if err != nil {
		respondWithUserError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, DetectResponse{Success: true, Format: format, Encoding: encoding})
}

func (s *Server) importStatements(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	companyID := mux.Vars(r)["companyId"]
	if companyID == "" {
		companyID = r.FormValue("companyId")
	}
	importID := uuid.New()
	logger := s.logger.WithFields(
		logging.Field{Key: logging.FieldImportID, Value: importID.String()},
		logging.Field{Key: logging.FieldCompany, Value: companyID})

	companies, err := s.companies.LoadCompanies(r.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to load companies")
		RespondWithError(w, http.StatusInternalServerError, "failed to load companies")
		return
	}

	result, err := s.pipeline.Ingest(raw, pipeline.IngestOptions{Companies: companies, CompanyID: companyID})
	if err != nil {
		if parsererror.IsUserError(err) {
			respondWithUserError(w, err)
			return
		}
		logger.WithError(err).Error("Import failed")
		RespondWithError(w, http.StatusInternalServerError, "import failed")
		return
	}

	resp := ImportResponse{
		Success:     true,
		ImportID:    importID.String(),
		Format:      result.Format,
		Encoding:    result.Encoding,
		NeedsReview: result.NeedsReview(),
		Statements:  make([]ImportedStatement, 0, len(result.Statements)),
	}
	for _, sr := range result.Statements {
		imported := ImportedStatement{StatementResult: sr, ReviewReasons: sr.ReviewReasons()}
		if imported.ReviewReasons == nil {
			imported.ReviewReasons = []pipeline.ReviewReason{}
		}
		resp.Statements = append(resp.Statements, imported)
	}

	if s.sink != nil {
		resolved, index := pipeline.Resolved(result.Statements)
		if len(resolved) > 0 {
			ids, err := s.sink.SaveImport(r.Context(), importID, resolved)
			if err != nil {
				logger.WithError(err).Error("Failed to save import")
				RespondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
					"success":  false,
					"error":    "failed to save statements, nothing was stored",
					"importId": importID.String(),
				})
				return
			}
			for i, id := range ids {
				resp.Statements[index[i]].SavedStatementID = id.String()
			}
		}
	}

	logger.Info("Import completed",
		logging.Field{Key: logging.FieldFormat, Value: string(result.Format)},
		logging.Field{Key: logging.FieldStatements, Value: len(result.Statements)},
		logging.Field{Key: logging.FieldCount, Value: result.TransactionCount()})
	RespondWithJSON(w, http.StatusOK, resp)
}

// readUpload returns the content of the multipart "file" field, answering
// the request itself when it cannot.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			RespondWithError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds the %d byte limit", s.maxUploadBytes))
			return nil, false
		}
		RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "No file uploaded")
		return nil, false
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Failed to read file")
		return nil, false
	}
	return raw, true
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			logging.Field{Key: "method", Value: r.Method},
			logging.Field{Key: "path", Value: r.URL.Path},
			logging.Field{Key: "status", Value: rec.status},
			logging.Field{Key: "duration", Value: time.Since(start).String()})
	})
}
