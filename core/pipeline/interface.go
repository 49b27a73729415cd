package pipeline

import "github.com/yasinhessnawi1/Hideme-sub004/model"

// DetectFunc scans page text and returns skeleton annotations: kind,
// covered text, label, confidence and character offsets, without
// geometry. Geometry comes from the viewer's text layer, which stays
// outside this library (see LocateFunc).
type DetectFunc func(text string) ([]*model.Annotation, error)

// LocateFunc resolves a character range of the page text to a bounding
// box in the page coordinate space. Implemented by the caller on top
// of its text layer; ok is false when the range cannot be placed.
type LocateFunc func(start, end int) (x, y, w, h float64, ok bool)

// Locate applies a locator to detected annotations, filling in
// geometry. Annotations the locator cannot place are dropped.
func Locate(annotations []*model.Annotation, locate LocateFunc) []*model.Annotation {
	if locate == nil {
		return nil
	}

	var located []*model.Annotation
	for _, annotation := range annotations {
		x, y, w, h, ok := locate(annotation.Start, annotation.End)
		if !ok {
			continue
		}
		annotation.X, annotation.Y, annotation.W, annotation.H = x, y, w, h
		located = append(located, annotation)
	}
	return located
}
