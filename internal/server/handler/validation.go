// Package handler provides the HTTP handlers of the Template Doctor API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/storage"
	"github.com/template-doctor/template-doctor/internal/validate"
)

// ValidationHandler exposes the validation workflows over HTTP.
type ValidationHandler struct {
	docker *validate.DockerValidator
	ossf   *validate.OSSFValidator
	azd    *validate.AzdValidator
	store  storage.Store
	logger *slog.Logger
}

// NewValidationHandler creates a ValidationHandler.
func NewValidationHandler(docker *validate.DockerValidator, ossf *validate.OSSFValidator, azd *validate.AzdValidator, store storage.Store, logger *slog.Logger) *ValidationHandler {
	return &ValidationHandler{
		docker: docker,
		ossf:   ossf,
		azd:    azd,
		store:  store,
		logger: logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

type dockerRequest struct {
	TemplateURL       string `json:"templateUrl"`
	IncludeAllDetails bool   `json:"includeAllDetails"`
}

type dockerResponse struct {
	TemplateURL       string            `json:"templateUrl"`
	RunID             string            `json:"runId"`
	GitHubRunID       int64             `json:"githubRunId"`
	WorkflowRunURL    string            `json:"workflowRunUrl"`
	ComplianceResults complianceResults `json:"complianceResults"`
	Artifacts         dockerArtifacts   `json:"artifacts"`
}

type complianceResults struct {
	Compliant bool `json:"compliant"`
}

type dockerArtifacts struct {
	RepositoryScan *core.ScanReport     `json:"repositoryScan"`
	ImageScans     []validate.ImageScan `json:"imageScans"`
}

// ValidateDockerImage handles POST /validation-docker-image.
func (h *ValidationHandler) ValidateDockerImage(w http.ResponseWriter, r *http.Request) {
	var req dockerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, core.WrapError(core.KindInvalidFormat, "invalid request body", err))
		return
	}
	if req.TemplateURL == "" {
		h.respondError(w, core.NewError(core.KindMissingParameter, "templateUrl is required"))
		return
	}

	result, err := h.docker.Run(r.Context(), req.TemplateURL, req.IncludeAllDetails)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dockerResponse{
		TemplateURL:       result.TemplateURL,
		RunID:             result.RunID,
		GitHubRunID:       result.GitHubRunID,
		WorkflowRunURL:    result.WorkflowRunURL,
		ComplianceResults: complianceResults{Compliant: result.Compliant},
		Artifacts: dockerArtifacts{
			RepositoryScan: result.RepositoryScan,
			ImageScans:     result.ImageScans,
		},
	})
}

type ossfRequest struct {
	TemplateURL string   `json:"templateUrl"`
	MinScore    *float64 `json:"minScore"`
}

type ossfResponse struct {
	API string `json:"api"`
	*validate.OSSFResult
}

// ValidateOSSF handles POST /validation-ossf.
func (h *ValidationHandler) ValidateOSSF(w http.ResponseWriter, r *http.Request) {
	var req ossfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, core.WrapError(core.KindInvalidFormat, "invalid request body", err))
		return
	}
	if req.TemplateURL == "" {
		h.respondError(w, core.NewError(core.KindMissingParameter, "templateUrl is required"))
		return
	}
	if req.MinScore == nil {
		h.respondError(w, core.NewError(core.KindMissingParameter, "minScore is required"))
		return
	}

	result, err := h.ossf.Run(r.Context(), req.TemplateURL, *req.MinScore)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, ossfResponse{API: "ossf", OSSFResult: result})
}

type azdRequest struct {
	TemplateURL string `json:"templateUrl"`
}

// ValidateTemplate handles POST /validation-template.
func (h *ValidationHandler) ValidateTemplate(w http.ResponseWriter, r *http.Request) {
	var req azdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, core.WrapError(core.KindInvalidFormat, "invalid request body", err))
		return
	}
	if req.TemplateURL == "" {
		h.respondError(w, core.NewError(core.KindMissingParameter, "templateUrl is required"))
		return
	}

	result, err := h.azd.Run(r.Context(), req.TemplateURL)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// ValidationStatus handles GET /validation-status.
func (h *ValidationHandler) ValidationStatus(w http.ResponseWriter, r *http.Request) {
	runID, err := strconv.ParseInt(r.URL.Query().Get("workflowRunId"), 10, 64)
	if err != nil || runID <= 0 {
		h.respondError(w, core.NewError(core.KindMissingParameter, "workflowRunId must be a positive integer"))
		return
	}
	ownerRepo := r.URL.Query().Get("workflowOrgRepo")

	status, statusErr := h.azd.Status(r.Context(), ownerRepo, runID)
	if statusErr != nil {
		h.respondError(w, statusErr)
		return
	}
	h.respondJSON(w, http.StatusOK, status)
}

type cancelRequest struct {
	WorkflowOrgRepo string `json:"workflowOrgRepo"`
	WorkflowRunID   int64  `json:"workflowRunId"`
}

// CancelValidation handles POST /validation-cancel.
func (h *ValidationHandler) CancelValidation(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, core.WrapError(core.KindInvalidFormat, "invalid request body", err))
		return
	}
	if req.WorkflowRunID <= 0 {
		h.respondError(w, core.NewError(core.KindMissingParameter, "workflowRunId must be a positive integer"))
		return
	}

	if err := h.azd.Cancel(r.Context(), req.WorkflowOrgRepo, req.WorkflowRunID); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"cancelled": true, "runId": req.WorkflowRunID})
}

// ListValidations handles GET /validations.
func (h *ValidationHandler) ListValidations(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, core.NewError(core.KindConfiguration, "validation history is not enabled"))
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.respondError(w, core.NewError(core.KindInvalidFormat, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	validations, err := h.store.ListRecentValidations(r.Context(), limit)
	if err != nil {
		h.respondError(w, core.WrapError(core.KindConfiguration, "failed to load validation history", err))
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"validations": validations})
}

func (h *ValidationHandler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *ValidationHandler) respondError(w http.ResponseWriter, err error) {
	status := core.HTTPStatus(err)
	errType := string(core.KindOf(err))
	if errType == "" {
		errType = "server_error"
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "type", errType, "error", err)
	} else {
		h.logger.Warn("request rejected", "type", errType, "error", err)
	}
	h.respondJSON(w, status, errorResponse{Error: err.Error(), Type: errType})
}
