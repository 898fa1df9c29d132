package sessions

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("session not found")
	ErrInvalidImage       = errors.New("invalid image")
	ErrNoImage            = errors.New("no image staged")
	ErrAnalysisInProgress = errors.New("analysis in progress")
	ErrInvalidTransition  = errors.New("invalid state transition")

	ErrEmptyImage       = fmt.Errorf("%w: file is empty", ErrInvalidImage)
	ErrImageTooLarge    = fmt.Errorf("%w: file too large", ErrInvalidImage)
	ErrUnsupportedImage = fmt.Errorf("%w: not a supported image", ErrInvalidImage)
)

// Messages shown to users for rejected uploads.
const (
	MessageNoFile      = "Choose a photo of your meal to continue."
	MessageEmptyImage  = "The selected file is empty. Choose another photo."
	MessageTooLarge    = "The selected photo is too large. Choose a smaller one."
	MessageUnsupported = "The selected file is not an image. Choose a JPEG, PNG, WebP or GIF photo."
)

// errStale reports that a finished analysis belongs to a session generation that no longer exists.
var errStale = errors.New("stale analysis")
