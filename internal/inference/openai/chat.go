package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"glucowizard-backend/internal/extract"
	"glucowizard-backend/internal/inference"
	"glucowizard-backend/internal/shared/telemetry"
)

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type string    `json:"type"`
	Text string    `json:"text,omitempty"`
	File *chatFile `json:"file,omitempty"`
}

type chatFile struct {
	FileName string `json:"filename"`
	FileData string `json:"file_data"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

// buildChatRequest inlines PDF text where it can be extracted and falls back
// to a base64 file part otherwise.
func buildChatRequest(ctx context.Context, model string, parts []inference.Part) chatRequest {
	content := make([]chatContent, 0, len(parts))
	for _, p := range parts {
		if p.Kind != inference.PartDocument {
			content = append(content, chatContent{Type: "text", Text: p.Text})
			continue
		}
		text, err := extract.ExtractTextFromBytes(ctx, p.Data, p.MimeType, p.FileName)
		if err == nil {
			content = append(content, chatContent{
				Type: "text",
				Text: fmt.Sprintf("Attached document (%s) text:\n%s", p.FileName, text),
			})
			continue
		}
		telemetry.Warn("inference.document_text_unavailable", telemetry.ContextFields(ctx, map[string]any{
			"file_name": p.FileName,
			"err":       err,
		}))
		content = append(content, chatContent{
			Type: "file",
			File: &chatFile{FileName: p.FileName, FileData: dataURL(p.MimeType, p.Data)},
		})
	}
	return chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: content}},
	}
}

func (c *Client) generateChat(ctx context.Context, parts []inference.Part) (inference.Result, error) {
	payload, raw, err := c.post(ctx, "/chat/completions", buildChatRequest(ctx, c.model, parts))
	if err != nil {
		return nil, err
	}
	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("openai response missing choices")
	}
	return &inference.ChatResponse{
		ID:      parsed.ID,
		Content: parsed.Choices[0].Message.Content,
		Raw:     raw,
	}, nil
}
