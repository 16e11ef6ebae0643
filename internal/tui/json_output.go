package tui

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/mrz1836/clickplan/internal/errors"
)

// JSONOutput writes one JSON object per message.
type JSONOutput struct {
	encoder *json.Encoder
}

// NewJSONOutput creates a JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{encoder: json.NewEncoder(w)}
}

type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type jsonError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Success writes {"type":"success","message":...}.
func (o *JSONOutput) Success(msg string) {
	o.message("success", msg)
}

// Error writes {"type":"error",...}. Details carries the wrapped error and
// suggestion the suggested action, when present.
func (o *JSONOutput) Error(err error) {
	out := jsonError{Type: "error", Message: err.Error()}
	if inner := stderrors.Unwrap(err); inner != nil {
		out.Details = inner.Error()
	}
	_, out.Suggestion = errors.Actionable(err)

	//nolint:errchkjson // Output methods have no error return
	_ = o.encoder.Encode(out)
}

// Warning writes {"type":"warning","message":...}.
func (o *JSONOutput) Warning(msg string) {
	o.message("warning", msg)
}

// Info writes {"type":"info","message":...}.
func (o *JSONOutput) Info(msg string) {
	o.message("info", msg)
}

func (o *JSONOutput) message(kind, msg string) {
	//nolint:errchkjson // Output methods have no error return
	_ = o.encoder.Encode(jsonMessage{Type: kind, Message: msg})
}

// Table writes the rows as an array of objects keyed by header.
func (o *JSONOutput) Table(headers []string, rows [][]string) {
	result := make([]map[string]string, 0, len(rows))
	if len(headers) > 0 {
		for _, row := range rows {
			obj := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					obj[h] = row[i]
				} else {
					obj[h] = ""
				}
			}
			result = append(result, obj)
		}
	}
	//nolint:errchkjson // Output methods have no error return
	_ = o.encoder.Encode(result)
}

// JSON writes v.
func (o *JSONOutput) JSON(v any) error {
	return o.encoder.Encode(v)
}
