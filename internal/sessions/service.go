package sessions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"calorievision-backend/internal/analysis"
	"calorievision-backend/internal/shared/metrics"
	"calorievision-backend/internal/shared/storage/object"
	"calorievision-backend/internal/shared/telemetry"
	"calorievision-backend/internal/shared/util"
)

// DefaultMaxImageBytes caps staged uploads when no limit is configured.
const DefaultMaxImageBytes int64 = 10 << 20

// Analyzer turns an encoded image payload into a result.
type Analyzer interface {
	Analyze(ctx context.Context, payload string) (analysis.Result, error)
}

// Service runs the per-session state machine.
type Service struct {
	Repo          Repo
	Store         object.ObjectStore
	Analyzer      Analyzer
	MaxImageBytes int64
	Now           func() time.Time

	inflight sync.WaitGroup
}

// Create starts a new idle session.
func (s *Service) Create(ctx context.Context) (Session, error) {
	now := s.now()
	session := Session{
		ID:        uuid.NewString(),
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, session); err != nil {
		return Session{}, err
	}
	telemetry.Info("session.created", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"session_id": session.ID,
	})
	return session, nil
}

// Get returns a session by ID.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	if strings.TrimSpace(id) == "" {
		return Session{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// StageImage validates and stores a photo, replacing any previously staged one.
// A rejected upload leaves the session exactly as it was.
func (s *Service) StageImage(ctx context.Context, id, fileName string, r io.Reader) (Session, error) {
	updated, _, err := s.stageImage(ctx, id, fileName, r)
	return updated, err
}

// stageImage also reports the state the session left, as seen by the update itself.
func (s *Service) stageImage(ctx context.Context, id, fileName string, r io.Reader) (Session, State, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Session{}, "", err
	}
	if current.State == StateAnalyzing {
		return current, current.State, ErrAnalysisInProgress
	}

	data, mimeType, err := s.readImage(r)
	if err != nil {
		if errors.Is(err, ErrInvalidImage) {
			metrics.IncImagesRejected()
			telemetry.Info("image.rejected", map[string]any{
				"request_id": requestIDFromContext(ctx),
				"session_id": id,
				"reason":     err.Error(),
			})
		}
		return current, current.State, err
	}

	name := stagedFileName(fileName, mimeType)
	key, size, _, err := s.Store.Save(ctx, id, name, bytes.NewReader(data))
	if err != nil {
		return current, current.State, fmt.Errorf("save image: %w", err)
	}

	var previous State
	var replaced *Image
	updated, err := s.Repo.Update(ctx, id, func(sess *Session) error {
		if sess.State == StateAnalyzing {
			return ErrAnalysisInProgress
		}
		previous = sess.State
		replaced = sess.Image
		sess.Image = &Image{
			StorageKey: key,
			FileName:   name,
			MimeType:   mimeType,
			SizeBytes:  size,
			StagedAt:   s.now(),
		}
		sess.Result = nil
		sess.Error = nil
		sess.AnalysisStartedAt = nil
		sess.AnalysisFinishedAt = nil
		sess.State = StateImageStaged
		sess.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		s.deleteObject(ctx, id, key)
		return updated, updated.State, err
	}
	if replaced != nil {
		s.deleteObject(ctx, id, replaced.StorageKey)
	}

	metrics.IncImagesStaged()
	telemetry.Info("session.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"session_id":        id,
		"status":            StateImageStaged,
		"status_transition": transition(previous, StateImageStaged),
		"mime_type":         mimeType,
		"size_bytes":        size,
	})
	return updated, previous, nil
}

// OpenImage streams the staged photo back to the caller.
func (s *Service) OpenImage(ctx context.Context, id string) (io.ReadCloser, Image, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, Image{}, err
	}
	if session.Image == nil {
		return nil, Image{}, ErrNoImage
	}
	rc, err := s.Store.Open(ctx, session.Image.StorageKey)
	if err != nil {
		return nil, Image{}, fmt.Errorf("open image: %w", err)
	}
	return rc, *session.Image, nil
}

// Analyze starts an analysis of the staged image. It returns as soon as the
// session is Analyzing; the result lands on the session when the work ends.
func (s *Service) Analyze(ctx context.Context, id string) (Session, error) {
	updated, _, err := s.analyze(ctx, id)
	return updated, err
}

func (s *Service) analyze(ctx context.Context, id string) (Session, State, error) {
	return s.start(ctx, id, func(state State) error {
		switch state {
		case StateImageStaged, StateFailed:
			return nil
		case StateIdle:
			return ErrNoImage
		case StateAnalyzing:
			return ErrAnalysisInProgress
		default:
			return ErrInvalidTransition
		}
	})
}

// Retry re-runs a failed analysis against the same staged image.
func (s *Service) Retry(ctx context.Context, id string) (Session, error) {
	updated, _, err := s.retry(ctx, id)
	return updated, err
}

func (s *Service) retry(ctx context.Context, id string) (Session, State, error) {
	return s.start(ctx, id, func(state State) error {
		switch state {
		case StateFailed:
			return nil
		case StateAnalyzing:
			return ErrAnalysisInProgress
		default:
			return ErrInvalidTransition
		}
	})
}

// Reset drops the image, result and error and returns the session to Idle.
// Any analysis still running for the previous generation is discarded.
func (s *Service) Reset(ctx context.Context, id string) (Session, error) {
	updated, _, err := s.reset(ctx, id)
	return updated, err
}

func (s *Service) reset(ctx context.Context, id string) (Session, State, error) {
	var previous State
	var dropped *Image
	updated, err := s.Repo.Update(ctx, id, func(sess *Session) error {
		previous = sess.State
		dropped = sess.Image
		sess.Image = nil
		sess.Result = nil
		sess.Error = nil
		sess.AnalysisStartedAt = nil
		sess.AnalysisFinishedAt = nil
		sess.Generation++
		sess.State = StateIdle
		sess.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return Session{}, "", err
	}
	if dropped != nil {
		s.deleteObject(ctx, id, dropped.StorageKey)
	}

	metrics.IncSessionsReset()
	telemetry.Info("session.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"session_id":        id,
		"status":            StateIdle,
		"status_transition": transition(previous, StateIdle),
		"generation":        updated.Generation,
	})
	return updated, previous, nil
}

// Delete removes the session and its staged image.
func (s *Service) Delete(ctx context.Context, id string) error {
	removed, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.released(ctx, removed, "session.deleted")
	return nil
}

// ExpireIdle deletes sessions untouched for longer than ttl and reports how many went.
// Each session is re-checked at deletion time, so one that was staged or
// started analyzing after the listing survives.
func (s *Service) ExpireIdle(ctx context.Context, ttl time.Duration) (int, error) {
	if ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-ttl)
	idle, err := s.Repo.ListIdleSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, sess := range idle {
		removed, deleted, err := s.Repo.DeleteIf(ctx, sess.ID, func(current Session) bool {
			return !idleSince(current, cutoff)
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return expired, err
		}
		if !deleted {
			continue
		}
		s.released(ctx, removed, "session.expired")
		expired++
	}
	if expired > 0 {
		telemetry.Info("session.janitor", map[string]any{
			"expired": expired,
			"ttl_ms":  ttl.Milliseconds(),
		})
	}
	return expired, nil
}

// released drops the staged object of a session already removed from the repo.
func (s *Service) released(ctx context.Context, removed Session, event string) {
	if removed.Image != nil {
		s.deleteObject(ctx, removed.ID, removed.Image.StorageKey)
	}
	telemetry.Info(event, map[string]any{
		"request_id": requestIDFromContext(ctx),
		"session_id": removed.ID,
		"state":      removed.State,
	})
}

// RunJanitor expires idle sessions every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ExpireIdle(ctx, ttl); err != nil && ctx.Err() == nil {
				telemetry.Error("session.janitor_failed", map[string]any{"err": err})
			}
		}
	}
}

// Wait blocks until every background analysis has finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) start(ctx context.Context, id string, allowed func(State) error) (Session, State, error) {
	var previous State
	var image Image
	startedAt := s.now()
	updated, err := s.Repo.Update(ctx, id, func(sess *Session) error {
		if err := allowed(sess.State); err != nil {
			return err
		}
		if sess.Image == nil {
			return ErrNoImage
		}
		previous = sess.State
		image = *sess.Image
		sess.State = StateAnalyzing
		sess.Result = nil
		sess.Error = nil
		sess.AnalysisStartedAt = &startedAt
		sess.AnalysisFinishedAt = nil
		sess.UpdatedAt = startedAt
		return nil
	})
	if err != nil {
		return updated, updated.State, err
	}

	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"session_id":        id,
		"status":            StateAnalyzing,
		"status_transition": transition(previous, StateAnalyzing),
		"generation":        updated.Generation,
	})

	s.inflight.Add(1)
	go s.completeAsync(backgroundWithRequestID(ctx), id, updated.Generation, image, startedAt)
	return updated, previous, nil
}

func (s *Service) completeAsync(ctx context.Context, id string, generation int, image Image, startedAt time.Time) {
	defer s.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			s.finish(ctx, id, generation, startedAt, analysis.Result{}, fmt.Errorf("%w: panic: %v", analysis.ErrAnalysisFailed, r))
		}
	}()

	payload, err := s.loadPayload(ctx, image)
	if err != nil {
		s.finish(ctx, id, generation, startedAt, analysis.Result{}, err)
		return
	}
	result, err := s.Analyzer.Analyze(ctx, payload)
	s.finish(ctx, id, generation, startedAt, result, err)
}

func (s *Service) finish(ctx context.Context, id string, generation int, startedAt time.Time, result analysis.Result, cause error) {
	finishedAt := s.now()
	next := StateResult
	if cause != nil {
		next = StateFailed
	}

	_, err := s.Repo.Update(ctx, id, func(sess *Session) error {
		if sess.Generation != generation || sess.State != StateAnalyzing {
			return errStale
		}
		sess.State = next
		sess.AnalysisFinishedAt = &finishedAt
		sess.UpdatedAt = finishedAt
		if cause != nil {
			sess.Result = nil
			sess.Error = &Failure{Code: FailureCodeAnalysis, Message: analysis.FailureMessage}
			return nil
		}
		res := result
		res.FoodRecord = result.FoodRecord.Clone()
		sess.Result = &res
		sess.Error = nil
		return nil
	})

	duration := float64(finishedAt.Sub(startedAt).Microseconds()) / 1000.0
	if err != nil {
		telemetry.Info("analysis.discarded", map[string]any{
			"request_id":  requestIDFromContext(ctx),
			"session_id":  id,
			"generation":  generation,
			"reason":      err.Error(),
			"duration_ms": duration,
		})
		return
	}

	metrics.ObserveAnalysisDurationMs(duration)
	fields := map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"session_id":        id,
		"status":            next,
		"status_transition": transition(StateAnalyzing, next),
		"duration_ms":       duration,
	}
	if cause != nil {
		metrics.IncAnalysisFailed()
		fields["err"] = cause
		telemetry.Error("analysis.status", fields)
		return
	}
	metrics.IncAnalysisCompleted()
	fields["food"] = result.Name
	fields["confidence"] = result.Confidence
	telemetry.Info("analysis.status", fields)
}

func (s *Service) loadPayload(ctx context.Context, image Image) (string, error) {
	rc, err := s.Store.Open(ctx, image.StorageKey)
	if err != nil {
		return "", fmt.Errorf("open staged image: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read staged image: %w", err)
	}
	return analysis.EncodeDataURL(image.MimeType, data), nil
}

func (s *Service) readImage(r io.Reader) ([]byte, string, error) {
	if r == nil {
		return nil, "", ErrEmptyImage
	}
	limit := s.maxImageBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	if int64(len(data)) > limit {
		return nil, "", ErrImageTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "", ErrUnsupportedImage
	}
	return data, mt.String(), nil
}

func (s *Service) maxImageBytes() int64 {
	if s.MaxImageBytes > 0 {
		return s.MaxImageBytes
	}
	return DefaultMaxImageBytes
}

func (s *Service) deleteObject(ctx context.Context, id, key string) {
	if key == "" {
		return
	}
	if err := s.Store.Delete(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Error("image.delete_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"session_id": id,
			"err":        err,
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// stagedFileName keeps the client's base name when usable, otherwise names
// the file after its detected type.
func stagedFileName(fileName, mimeType string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if base != "." && base != "/" {
		if clean, err := util.SanitizeFileName(base); err == nil {
			return clean
		}
	}
	ext := mimetype.Lookup(mimeType)
	if ext == nil {
		return "image"
	}
	return "image" + ext.Extension()
}

func transition(from, to State) string {
	return string(from) + "->" + string(to)
}
