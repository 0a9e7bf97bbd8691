package patient

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/registration/internal/docstore"
)

// Handler exposes patient registration over HTTP. Every response uses
// the API's success/message envelope.
type Handler struct {
	svc *Service
}

// NewHandler creates a patient Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the patient routes on the supplied group
// (mounted at /api/patients).
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Register)
	g.GET("", h.List)
	g.GET("/documents/:filename", h.Document)
	g.GET("/:id", h.Get)
}

// patientResponse is the wire shape of a patient.
type patientResponse struct {
	ID            int64     `json:"id"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	DocumentPhoto string    `json:"documentPhoto,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toResponse(p *Patient, includeDocument bool) patientResponse {
	resp := patientResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Email:     p.Email,
		Phone:     p.Phone(),
		CreatedAt: p.CreatedAt,
	}
	if includeDocument {
		resp.DocumentPhoto = p.DocumentPhoto
	}
	return resp
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// Register handles POST /api/patients: a multipart form with fullName,
// email, phone and a documentPhoto file.
func (h *Handler) Register(c echo.Context) error {
	file, err := c.FormFile("documentPhoto")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Document photo is required")
	}

	src, err := file.Open()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error. Please try again later.")
	}
	defer src.Close()

	req := &RegistrationRequest{
		FullName: c.FormValue("fullName"),
		Email:    c.FormValue("email"),
		Phone:    c.FormValue("phone"),
		Document: &Document{
			Content:     src,
			ContentType: file.Header.Get("Content-Type"),
			Size:        file.Size,
			Filename:    file.Filename,
		},
	}

	p, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		var verrs ValidationErrors
		switch {
		case errors.As(err, &verrs):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"message": "Validation failed",
				"errors":  verrs,
			})
		case errors.Is(err, ErrDuplicateEmail):
			return fail(c, http.StatusConflict, "Email already exists. Please use a different email address.")
		default:
			return fail(c, http.StatusInternalServerError, "Internal server error. Please try again later.")
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Patient registered successfully",
		"data":    toResponse(p, false),
	})
}

// List handles GET /api/patients.
func (h *Handler) List(c echo.Context) error {
	patients, err := h.svc.List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error. Please try again later.")
	}

	data := make([]patientResponse, 0, len(patients))
	for _, p := range patients {
		data = append(data, toResponse(p, false))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Patients retrieved successfully",
		"data":    data,
	})
}

// Get handles GET /api/patients/:id.
func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusNotFound, "Patient not found")
	}

	p, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return fail(c, http.StatusNotFound, "Patient not found")
		}
		return fail(c, http.StatusInternalServerError, "Internal server error. Please try again later.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Patient retrieved successfully",
		"data":    toResponse(p, true),
	})
}

// Document handles GET /api/patients/documents/:filename and streams the
// stored document photo.
func (h *Handler) Document(c echo.Context) error {
	ref := c.Param("filename")

	rc, size, err := h.svc.OpenDocument(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, docstore.ErrDocumentNotFound) || errors.Is(err, docstore.ErrInvalidReference) {
			return fail(c, http.StatusNotFound, "Document photo not found")
		}
		return fail(c, http.StatusInternalServerError, "Internal server error. Please try again later.")
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(size, 10))
	return c.Stream(http.StatusOK, "image/jpeg", rc)
}
