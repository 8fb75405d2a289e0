package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"glucowizard-backend/internal/inference"
	"glucowizard-backend/internal/shared/telemetry"
)

type responsesRequest struct {
	Model string            `json:"model"`
	Input []responsesPrompt `json:"input"`
}

type responsesPrompt struct {
	Role    string           `json:"role"`
	Content []responsesInput `json:"content"`
}

type responsesInput struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	FileName string `json:"filename,omitempty"`
	FileData string `json:"file_data,omitempty"`
}

type responsesResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *apiError `json:"error"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func buildResponsesRequest(model string, parts []inference.Part) responsesRequest {
	content := make([]responsesInput, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case inference.PartDocument:
			content = append(content, responsesInput{
				Type:     "input_file",
				FileName: p.FileName,
				FileData: dataURL(p.MimeType, p.Data),
			})
		default:
			content = append(content, responsesInput{Type: "input_text", Text: p.Text})
		}
	}
	return responsesRequest{
		Model: model,
		Input: []responsesPrompt{{Role: "user", Content: content}},
	}
}

func (c *Client) generateResponses(ctx context.Context, parts []inference.Part) (inference.Result, error) {
	payload, raw, err := c.post(ctx, "/responses", buildResponsesRequest(c.model, parts))
	if err != nil {
		return nil, err
	}
	var parsed responsesResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if parsed.Status == "failed" {
		return nil, fmt.Errorf("openai response %s failed", parsed.ID)
	}
	if parsed.Usage != nil {
		telemetry.Info("inference.usage", map[string]any{
			"model":         c.model,
			"response_id":   parsed.ID,
			"input_tokens":  parsed.Usage.InputTokens,
			"output_tokens": parsed.Usage.OutputTokens,
			"total_tokens":  parsed.Usage.TotalTokens,
		})
	}
	return &inference.StructuredResponse{
		ID:         parsed.ID,
		OutputText: outputText(parsed),
		Raw:        raw,
	}, nil
}

// outputText concatenates every output_text block across message outputs.
func outputText(r responsesResponse) string {
	var b strings.Builder
	for _, item := range r.Output {
		for _, block := range item.Content {
			if block.Type == "output_text" {
				b.WriteString(block.Text)
			}
		}
	}
	return b.String()
}

func dataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
