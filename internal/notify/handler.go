package notify

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves the notification management endpoints. They expose the
// channel catalogue, the effective configuration, templates, delivery
// statistics and a test send.
type Handler struct {
	registry   *Registry
	templates  *TemplateEngine
	dispatcher *Dispatcher
	enabled    []string
}

// NewHandler wires the notification components into an HTTP handler.
func NewHandler(registry *Registry, templates *TemplateEngine, dispatcher *Dispatcher, enabled []string) *Handler {
	return &Handler{
		registry:   registry,
		templates:  templates,
		dispatcher: dispatcher,
		enabled:    enabled,
	}
}

// RegisterRoutes mounts the notification endpoints on g.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/channels", h.Channels)
	g.GET("/config", h.Config)
	g.GET("/templates/:channel", h.Templates)
	g.GET("/stats", h.Stats)
	g.POST("/test/:channel", h.Test)
}

// Channels lists the registered channels and whether each is enabled.
func (h *Handler) Channels(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    h.registry.Describe(h.enabled),
	})
}

// Config reports the effective notification configuration. The
// validation block flags enabled channel names with no registered
// implementation, which points at a misconfigured deployment.
func (h *Handler) Config(c echo.Context) error {
	channels := h.enabled
	if channels == nil {
		channels = []string{}
	}

	missing := []string{}
	for _, name := range h.enabled {
		if _, ok := h.registry.Get(name); !ok {
			missing = append(missing, name)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"globalEnabled": len(h.enabled) > 0,
			"channels":      channels,
			"validation": map[string]interface{}{
				"valid":   len(missing) == 0,
				"missing": missing,
			},
		},
	})
}

// Templates returns the message templates for a channel. Every channel
// renders from the shared engine today, so only registered channels
// report templates.
func (h *Handler) Templates(c echo.Context) error {
	channel := c.Param("channel")
	if _, ok := h.registry.Get(channel); !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": fmt.Sprintf("No templates found for channel: %s", channel),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    h.templates.List(),
	})
}

// Stats reports per-channel delivery tallies since process start.
func (h *Handler) Stats(c echo.Context) error {
	perChannel := h.dispatcher.Stats()

	var total ChannelStats
	for _, s := range perChannel {
		total.Total += s.Total
		total.Successful += s.Successful
		total.Failed += s.Failed
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"total":      total.Total,
			"successful": total.Successful,
			"failed":     total.Failed,
			"channels":   perChannel,
		},
	})
}

type testRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// Test sends a test notification through a single channel synchronously,
// so a misconfigured transport surfaces in the response instead of a log.
func (h *Handler) Test(c echo.Context) error {
	name := c.Param("channel")
	ch, ok := h.registry.Get(name)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": fmt.Sprintf("Test notifications not yet supported for channel: %s", name),
		})
	}

	var req testRequest
	if err := c.Bind(&req); err != nil || req.Recipient == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Recipient is required",
		})
	}

	receipt, err := ch.Send(c.Request().Context(), Payload{
		Kind:      KindTestNotification,
		Recipient: req.Recipient,
		Data:      map[string]string{"message": req.Message},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": fmt.Sprintf("Failed to send test %s notification", name),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Test %s sent successfully", name),
		"data": map[string]interface{}{
			"channel":   name,
			"recipient": req.Recipient,
			"messageId": receipt.MessageID,
		},
	})
}
