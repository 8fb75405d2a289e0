package reports

import (
	"encoding/json"
	"mime"
	"path"
	"strings"

	"glucowizard-backend/internal/inference"
)

const analysisInstructions = `You are a clinical assistant reviewing a person's diabetes records.
Analyse the diabetic readings below and, if attached, the PDF report.

Cover:
- Trends across the readings (direction and variability over time).
- Hyperglycaemia and hypoglycaemia episodes, with the values that indicate them.
- Conservative, directional suggestions for insulin settings (bolus ratio, basal rates, correction factors), for example "consider a slightly lower basal rate overnight". Never give exact doses.

State clearly that this is not a prescription and that any change must be discussed with the person's care team.

Return:
1) a short summary
2) key abnormalities
3) recommendations

Also return a JSON object with fields: summary, abnormalities[], recommendations[].`

// BuildPrompt assembles the inference prompt for a report.
func BuildPrompt(readings map[string]any, policyInstructions string, doc *Document) ([]inference.Part, error) {
	if readings == nil {
		readings = map[string]any{}
	}
	encoded, err := json.Marshal(readings)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(analysisInstructions)
	b.WriteString("\n\nDiabetic JSON:\n")
	b.Write(encoded)
	if strings.TrimSpace(policyInstructions) != "" {
		b.WriteString("\n\nAdditional instructions:\n")
		b.WriteString(policyInstructions)
	}

	parts := []inference.Part{inference.TextPart(b.String())}
	if doc != nil && len(doc.Data) > 0 {
		parts = append(parts, inference.DocumentPart(path.Base(doc.FileName), documentMimeType(doc.ContentType), doc.Data))
	}
	return parts, nil
}

// documentMimeType keeps a specific client-declared type and falls back to
// PDF when the upload carried none or only a generic binary type.
func documentMimeType(declared string) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || mediaType == "application/octet-stream" || mediaType == "binary/octet-stream" {
		return "application/pdf"
	}
	return mediaType
}
