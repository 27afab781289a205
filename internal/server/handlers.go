package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	apperrors "github.com/devops863/kaizen-sourcing/internal/common/errors"
	"github.com/devops863/kaizen-sourcing/internal/common/validation"
	"github.com/devops863/kaizen-sourcing/internal/models"

	"github.com/gin-gonic/gin"
)

// ApplicationService is what the HTTP layer needs from the submission service.
type ApplicationService interface {
	CreateApplication(ctx context.Context, payload []byte) (*models.Application, error)
	ListApplications(ctx context.Context) ([]models.Application, error)
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ApplicationHandler struct {
	service      ApplicationService
	errors       *apperrors.ErrorHandler
	maxBodyBytes int64
}

func NewApplicationHandler(service ApplicationService, errHandler *apperrors.ErrorHandler, maxBodyBytes int64) *ApplicationHandler {
	return &ApplicationHandler{service: service, errors: errHandler, maxBodyBytes: maxBodyBytes}
}

// Create handles POST /applications.
func (h *ApplicationHandler) Create(c *gin.Context) {
	body := c.Request.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxBodyBytes)
	}

	payload, err := io.ReadAll(body)
	if err != nil {
		h.errors.HandleRequestError(c, apperrors.NewInvalidRequestBodyError(err))
		return
	}

	app, err := h.service.CreateApplication(c.Request.Context(), payload)
	if err != nil {
		h.errors.HandleRequestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// List handles GET /applications.
func (h *ApplicationHandler) List(c *gin.Context) {
	apps, err := h.service.ListApplications(c.Request.Context())
	if err != nil {
		h.errors.HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// Schema serves the application contract so non-Go clients validate with the
// same document as the server.
func Schema(contract *validation.Contract) gin.HandlerFunc {
	raw := contract.Raw()
	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=300")
		c.Data(http.StatusOK, "application/schema+json", raw)
	}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings every dependency with a short deadline.
func Ready(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = errorSummary(err)
				continue
			}
			results[name] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}

func errorSummary(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "unavailable"
}
