package httpadapter

import (
	"careerbot/internal/common/validation"
	"careerbot/internal/models"
)

const maxTextLength = 1000

var (
	sendMessageSchema = validation.MustCompile(validation.JSONSchema{
		Type:     "object",
		Required: []string{"text"},
		Properties: map[string]validation.Property{
			"text": {
				Type:        "string",
				Description: "Free text typed by the user",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(maxTextLength),
			},
		},
	})

	selectStageSchema = validation.MustCompile(validation.JSONSchema{
		Type:     "object",
		Required: []string{"stage"},
		Properties: map[string]validation.Property{
			"stage": {
				Type:        "string",
				Description: "Educational stage button",
				Enum:        stageNames(),
			},
		},
	})

	undergraduateSchema = validation.MustCompile(validation.JSONSchema{
		Type:     "object",
		Required: []string{"major", "year"},
		Properties: map[string]validation.Property{
			"major": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(200),
			},
			"year": {
				Type: "string",
				Enum: models.YearsOfStudy,
			},
		},
	})

	postgraduateSchema = validation.MustCompile(validation.JSONSchema{
		Type:     "object",
		Required: []string{"field"},
		Properties: map[string]validation.Property{
			"field": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(200),
			},
		},
	})
)

func stageNames() []string {
	names := make([]string, 0, len(models.Stages))
	for _, s := range models.Stages {
		names = append(names, string(s))
	}
	return names
}
