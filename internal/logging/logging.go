package logging

import (
	"encoding/json"
	"log"
	"time"
)

// Fields is the fixed shape of a structured log line. Empty fields are
// omitted so routine lines stay short.
type Fields struct {
	Service  string `json:"service"`
	UserID   string `json:"user_id,omitempty"`
	OrderID  int    `json:"order_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Step     string `json:"step,omitempty"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
	Elapsed  int64  `json:"elapsed_ms,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// Log emits one JSON object per line on the standard logger.
func Log(fields Fields) {
	payload := map[string]any{
		"service":   fields.Service,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if fields.UserID != "" {
		payload["user_id"] = fields.UserID
	}
	if fields.OrderID != 0 {
		payload["order_id"] = fields.OrderID
	}
	if fields.Status != "" {
		payload["status"] = fields.Status
	}
	if fields.Step != "" {
		payload["step"] = fields.Step
	}
	if fields.Error != "" {
		payload["error"] = fields.Error
	}
	if fields.Message != "" {
		payload["message"] = fields.Message
	}
	if fields.Elapsed != 0 {
		payload["elapsed_ms"] = fields.Elapsed
	}
	if fields.Quantity != 0 {
		payload["quantity"] = fields.Quantity
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", fields.Service, err.Error())
		return
	}
	log.Print(string(data))
}
