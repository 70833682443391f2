package server

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"equalprop/ai"
	"equalprop/proposal"
	"equalprop/store"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func sendError(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Error: msg})
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth godoc
// @Summary Service health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleCreateRun godoc
// @Summary Start an equalization run
// @Description Upload one RFP document and up to 20 proposal documents.
// @Description Extraction and report generation happen in the background;
// @Description poll the returned run id for progress.
// @Accept multipart/form-data
// @Produce json
// @Param rfp formData file true "RFP document (PDF)"
// @Param proposals formData file true "Proposal documents (PDF), repeatable"
// @Success 202 {object} store.Run
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/runs [post]
func (s *Server) handleCreateRun(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxProposalUpload)

	form, err := c.MultipartForm()
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	rfpFiles := form.File["rfp"]
	if len(rfpFiles) != 1 {
		sendError(c, http.StatusBadRequest, "exactly one rfp file is required")
		return
	}
	proposalFiles := form.File["proposals"]
	if len(proposalFiles) == 0 {
		sendError(c, http.StatusBadRequest, "at least one proposal file is required")
		return
	}
	if len(proposalFiles) > proposal.MaxProposals {
		sendError(c, http.StatusBadRequest,
			fmt.Sprintf("at most %d proposals are supported", proposal.MaxProposals))
		return
	}

	rfpDoc, err := readUpload(rfpFiles[0])
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}
	proposalDocs := make([]ai.Document, 0, len(proposalFiles))
	for _, fh := range proposalFiles {
		doc, err := readUpload(fh)
		if err != nil {
			sendError(c, http.StatusBadRequest, err.Error())
			return
		}
		proposalDocs = append(proposalDocs, doc)
	}

	runID := uuid.New().String()
	outputDir := filepath.Join(s.cfg.OutputDir, runID)
	run, err := s.store.CreateRun(runID, rfpDoc.Name, len(proposalDocs), outputDir)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	go s.executeRun(run.ID, outputDir, rfpDoc, proposalDocs)

	c.JSON(http.StatusAccepted, run)
}

func (s *Server) executeRun(runID, outputDir string, rfpDoc ai.Document, proposalDocs []ai.Document) {
	if err := s.store.SetRunning(runID); err != nil {
		s.logger.Error("run update failed", "run_id", runID, "error", err)
		return
	}

	result, err := s.runner.Run(context.Background(), outputDir, rfpDoc, proposalDocs)
	if err != nil {
		s.logger.Error("run failed", "run_id", runID, "error", err)
		if dbErr := s.store.SetFailed(runID, err); dbErr != nil {
			s.logger.Error("run update failed", "run_id", runID, "error", dbErr)
		}
		return
	}

	if err := s.store.SetDone(runID, result.CSVPath, result.XLSXPath); err != nil {
		s.logger.Error("run update failed", "run_id", runID, "error", err)
		return
	}
	s.logger.Info("run finished",
		"run_id", runID,
		"proposals", result.Proposals,
		"products", result.Products,
		"csv", result.CSVPath,
		"xlsx", result.XLSXPath,
	)
}

func readUpload(fh *multipart.FileHeader) (ai.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return ai.Document{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return ai.Document{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	if len(data) == 0 {
		return ai.Document{}, fmt.Errorf("upload %s is empty", fh.Filename)
	}
	return ai.Document{Name: fh.Filename, Data: data}, nil
}

// handleListRuns godoc
// @Summary List runs
// @Produce json
// @Param limit query int false "Maximum number of runs" default(50)
// @Success 200 {array} store.Run
// @Failure 500 {object} ErrorResponse
// @Router /api/runs [get]
func (s *Server) handleListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := s.store.ListRuns(limit)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	c.JSON(http.StatusOK, runs)
}

// handleGetRun godoc
// @Summary Get run status
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} store.Run
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/runs/{id} [get]
func (s *Server) handleGetRun(c *gin.Context) {
	run, err := s.store.GetRun(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		sendError(c, http.StatusNotFound, "run not found")
		return
	}
	c.JSON(http.StatusOK, run)
}

// handleDownloadReport godoc
// @Summary Download the consolidated report
// @Produce octet-stream
// @Param id path string true "Run id"
// @Param format query string false "csv or xlsx" default(xlsx)
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/runs/{id}/report [get]
func (s *Server) handleDownloadReport(c *gin.Context) {
	run, err := s.store.GetRun(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		sendError(c, http.StatusNotFound, "run not found")
		return
	}
	if run.Status != store.StatusDone {
		sendError(c, http.StatusConflict, fmt.Sprintf("run is %s", run.Status))
		return
	}

	path := run.XLSXPath
	if c.DefaultQuery("format", "xlsx") == "csv" {
		path = run.CSVPath
	}
	if path == "" {
		sendError(c, http.StatusNotFound, "report file not recorded")
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
