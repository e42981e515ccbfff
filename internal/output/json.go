package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, report *models.AuditReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteReportFile serialises report as indented JSON and writes it to path,
// creating or overwriting the file. It does not affect stdout output.
func WriteReportFile(path string, report *models.AuditReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file %q: %w", path, err)
	}
	return nil
}

// JSONLWriter emits one JSON object per line as findings arrive. Check
// errors are written inline as {"error": {...}} objects.
type JSONLWriter struct {
	enc *json.Encoder
}

// NewJSONLWriter returns a JSONLWriter writing to w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{enc: json.NewEncoder(w)}
}

// WriteFinding writes f as a single line.
func (j *JSONLWriter) WriteFinding(f models.Finding) error {
	return j.enc.Encode(f)
}

// WriteError writes rec wrapped in an "error" envelope.
func (j *JSONLWriter) WriteError(rec models.CheckErrorRecord) error {
	return j.enc.Encode(struct {
		Error models.CheckErrorRecord `json:"error"`
	}{rec})
}
