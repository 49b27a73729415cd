package pipeline

import (
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/yasinhessnawi1/Hideme-sub004/helper"
	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

// DefaultEntityDetector creates an entity detector using a NER model.
// Uses distilbert-NER for named entity recognition.
// Detects: PERSON, ORGANIZATION, LOCATION, MISC entities, returned as
// ENTITY annotations with label, confidence and character offsets.
func DefaultEntityDetector() (DetectFunc, error) {
	// Prepare model (download if needed)
	// Using KnightsAnalytics optimized distilbert-NER model
	modelName := "KnightsAnalytics/distilbert-NER"
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	// Create token classification pipeline for NER
	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}), // Ignore non-entity tokens
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return func(text string) ([]*model.Annotation, error) {
		// Run NER on the text
		result, err := nerPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to run NER: %w", err)
		}

		if len(result.Entities) == 0 {
			return nil, nil
		}

		// Convert NER results to ENTITY annotations
		var annotations []*model.Annotation
		for _, entity := range result.Entities[0] {
			annotations = append(annotations, &model.Annotation{
				Kind:        model.KindEntity,
				Text:        strings.TrimSpace(entity.Word),
				EntityLabel: normalizeEntityLabel(entity.Entity),
				Score:       float64(entity.Score),
				Start:       int(entity.Start),
				End:         int(entity.End),
			})
		}

		return annotations, nil
	}, nil
}

// normalizeEntityLabel removes B- and I- prefixes from NER labels
func normalizeEntityLabel(label string) string {
	// Remove BIO tagging prefixes (B- for beginning, I- for inside)
	if strings.HasPrefix(label, "B-") {
		return label[2:]
	}
	if strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
