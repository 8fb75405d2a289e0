package reports

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"glucowizard-backend/internal/shared/server/middleware"
	"glucowizard-backend/internal/shared/server/respond"
)

const maxUploadSize = 20 << 20 // 20MB

// Handler wires HTTP handlers to the reports service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches report routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reports/create/", h.create)
	rg.GET("/reports/", h.list)
	rg.GET("/reports/stats/", h.stats)
	rg.GET("/reports/:id/", h.get)
}

type createRequest struct {
	DiabeticValues json.RawMessage `json:"diabetic_values"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	in := SubmitInput{OwnerID: userID}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if raw, ok := c.GetPostForm("diabetic_values"); ok {
			in.Readings = raw
		}
		doc, err := formDocument(c)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read pdf_file", nil)
			return
		}
		in.Document = doc
	} else {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
			return
		}
		in.Readings = req.DiabeticValues
	}

	report, err := h.Svc.Submit(c.Request.Context(), in)
	if report.ID != "" {
		c.Set("reportId", report.ID)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, validationMessage(err), nil)
		case report.ID != "":
			c.Set("statusTransition", StatusProcessing+"->"+report.Status)
			respond.JSON(c, http.StatusInternalServerError, toDetail(View{Report: report}))
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to create report", nil)
		}
		return
	}

	c.Set("statusTransition", StatusProcessing+"->"+report.Status)
	respond.Created(c, toDetail(View{Report: report}))
}

func formDocument(c *gin.Context) (*Document, error) {
	fileHeader, err := c.FormFile("pdf_file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &Document{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	page := 1
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page = parsed
		}
	}
	pageSize := DefaultPageSize
	if v := c.Query("page_size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			pageSize = parsed
		}
	}

	result, err := h.Svc.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to list reports", nil)
		return
	}
	respond.OK(c, toListResponse(result))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	reportID := c.Param("id")
	c.Set("reportId", reportID)

	view, err := h.Svc.Get(c.Request.Context(), userID, reportID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "report not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to fetch report", nil)
		}
		return
	}
	respond.OK(c, toDetail(view))
}

func (h *Handler) stats(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	stats, err := h.Svc.Stats(c.Request.Context(), userID, c.Query("period"))
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, validationMessage(err), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to compute stats", nil)
		}
		return
	}
	respond.OK(c, stats)
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
}
