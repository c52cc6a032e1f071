package dto

import "time"

// TemplateRequest is the body of POST and PUT /templates.
type TemplateRequest struct {
	Name       string `json:"name"`
	SourceType string `json:"source_type"`
	TargetType string `json:"target_type"`
	Comment    string `json:"comment"`
	Code       string `json:"code"`
}

// TemplateAttributes are the fields of a template.
type TemplateAttributes struct {
	Name         string    `json:"name"`
	SourceType   string    `json:"source_type"`
	TargetType   string    `json:"target_type"`
	Comment      string    `json:"comment"`
	Code         string    `json:"code"`
	Placeholders []string  `json:"placeholders"`
	CreatedAt    time.Time `json:"created_at"`
}

// TemplateData is a template resource.
type TemplateData struct {
	Type       string             `json:"type"`
	ID         string             `json:"id"`
	Attributes TemplateAttributes `json:"attributes"`
}

// TemplateResponse is a single template.
type TemplateResponse struct {
	Data TemplateData `json:"data"`
}

// TemplateListResponse lists templates newest first.
type TemplateListResponse struct {
	Data []TemplateData `json:"data"`
}
