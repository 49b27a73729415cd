package redact

import (
	"fmt"
	"sort"

	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

// UnknownText is exported in place of missing source text
const UnknownText = "Unknown"

// BuildMapping projects page-indexed annotations into the redaction
// export schema. Pages are emitted in ascending page order; within a
// page the input order is kept. Annotations are filtered by the
// kind-inclusion flags (a record without a kind counts as MANUAL), and
// pages left without items after filtering are omitted entirely.
func BuildMapping(pageAnnotations map[int][]*model.Annotation, includeSearch, includeEntity, includeManual bool) *model.RedactionMapping {
	mapping := &model.RedactionMapping{Pages: []model.PageMapping{}}

	pages := make([]int, 0, len(pageAnnotations))
	for page := range pageAnnotations {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	for _, page := range pages {
		var sensitive []model.SensitiveItem
		for _, annotation := range pageAnnotations[page] {
			if annotation == nil || !includeKind(annotation.Kind, includeSearch, includeEntity, includeManual) {
				continue
			}
			sensitive = append(sensitive, toSensitiveItem(annotation))
		}
		if len(sensitive) == 0 {
			continue
		}
		mapping.Pages = append(mapping.Pages, model.PageMapping{Page: page, Sensitive: sensitive})
	}

	return mapping
}

// Statistics aggregates a mapping into per-type and per-page counts.
// A nil or empty mapping yields zero counts with non-nil maps.
func Statistics(mapping *model.RedactionMapping) model.MappingStats {
	stats := model.MappingStats{
		ByType: map[string]int{},
		ByPage: map[string]int{},
	}
	if mapping == nil {
		return stats
	}

	for _, page := range mapping.Pages {
		stats.TotalItems += len(page.Sensitive)
		if len(page.Sensitive) > 0 {
			stats.ByPage[fmt.Sprintf("page_%d", page.Page)] += len(page.Sensitive)
		}
		for _, item := range page.Sensitive {
			stats.ByType[item.EntityType]++
		}
	}

	return stats
}

func includeKind(kind model.Kind, includeSearch, includeEntity, includeManual bool) bool {
	switch kind.Normalized() {
	case model.KindSearch:
		return includeSearch
	case model.KindEntity:
		return includeEntity
	default:
		return includeManual
	}
}

func toSensitiveItem(a *model.Annotation) model.SensitiveItem {
	text := a.Text
	if text == "" {
		text = UnknownText
	}

	entityType := string(a.Kind.Normalized())
	if a.Kind.Normalized() == model.KindEntity && a.EntityLabel != "" {
		entityType = a.EntityLabel
	}

	score := a.Score
	if score == 0 {
		score = 1.0
	}

	return model.SensitiveItem{
		OriginalText: text,
		EntityType:   entityType,
		Score:        score,
		Start:        a.Start,
		End:          a.End,
		BBox:         model.BBox{X0: a.X, Y0: a.Y, X1: a.X + a.W, Y1: a.Y + a.H},
	}
}
