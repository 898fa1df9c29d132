package analysis

import "errors"

var (
	ErrNoImage        = errors.New("no image payload")
	ErrEmptyCatalog   = errors.New("catalog has no records")
	ErrAnalysisFailed = errors.New("analysis failed")
)

// FailureMessage is the only text shown to users when an analysis fails.
const FailureMessage = "We couldn't analyze this image. Make sure the photo is clear and well lit, then try again."
