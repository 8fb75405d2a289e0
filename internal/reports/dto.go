package reports

import "time"

type detailResponse struct {
	ID               string         `json:"id"`
	DiabeticValues   map[string]any `json:"diabetic_values"`
	PDFFile          string         `json:"pdf_file"`
	PDFURL           string         `json:"pdf_url,omitempty"`
	AISummaryText    string         `json:"ai_summary_text"`
	AIRaw            map[string]any `json:"ai_raw"`
	OpenAIResponseID string         `json:"openai_response_id"`
	Status           string         `json:"status"`
	ErrorMessage     string         `json:"error_message"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type listResponse struct {
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Results  []detailResponse `json:"results"`
}

func toDetail(v View) detailResponse {
	readings := v.Readings
	if readings == nil {
		readings = map[string]any{}
	}
	return detailResponse{
		ID:               v.ID,
		DiabeticValues:   readings,
		PDFFile:          v.DocumentRef,
		PDFURL:           v.PDFURL,
		AISummaryText:    v.SummaryText,
		AIRaw:            v.RawResult,
		OpenAIResponseID: v.InferenceID,
		Status:           v.Status,
		ErrorMessage:     v.ErrorDetail,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

func toListResponse(p Page) listResponse {
	results := make([]detailResponse, 0, len(p.Results))
	for _, v := range p.Results {
		results = append(results, toDetail(v))
	}
	return listResponse{Count: p.Count, Page: p.Page, PageSize: p.PageSize, Results: results}
}
