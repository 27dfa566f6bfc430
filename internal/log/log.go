// Package log emits the marketplace audit trail as JSON lines: one event per
// order/catalog/auth action, stamped with the request context so a trade can
// be traced from HTTP request to stock mutation.
package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type event struct {
	Time      string         `json:"time"`
	Level     string         `json:"level"`
	Action    string         `json:"action,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	ActorID   string         `json:"actor_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	Status    int            `json:"status,omitempty"`
	Err       string         `json:"error,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
}

func emit(level string, c *fiber.Ctx, action string, err error, detail map[string]any) {
	e := event{
		Time:   time.Now().UTC().Format(time.RFC3339),
		Level:  level,
		Action: action,
		Detail: detail,
	}
	if c != nil {
		e.IP = c.IP()
		e.Method = c.Method()
		e.Path = c.Path()
		e.Status = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok {
			e.RequestID = rid
		}
		// The authenticated user, when the route has one.
		if uid, ok := c.Locals("user_id").(string); ok {
			e.ActorID = uid
		}
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

// Audit records a successful state change: an order placed or cancelled, a
// listing edited, an account created.
func Audit(c *fiber.Ctx, action string, detail map[string]any) {
	emit("audit", c, action, nil, detail)
}

// Security records a rejected attempt: failed logins, role denials, rate
// limits, input that failed validation.
func Security(c *fiber.Ctx, action string, detail map[string]any) {
	emit("security", c, action, nil, detail)
}

// Error records an unclassified failure surfaced to the client as a generic
// server error.
func Error(c *fiber.Ctx, action string, err error, detail map[string]any) {
	emit("error", c, action, err, detail)
}
