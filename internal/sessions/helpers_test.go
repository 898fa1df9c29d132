package sessions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"calorievision-backend/internal/analysis"
	"calorievision-backend/internal/catalog"
	"calorievision-backend/internal/shared/storage/object"
	"calorievision-backend/internal/shared/storage/object/local"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func pngBytes(size int) []byte {
	out := make([]byte, size)
	copy(out, pngSignature)
	return out
}

func jpegBytes(size int) []byte {
	out := make([]byte, size)
	copy(out, []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00})
	return out
}

// fakeAnalyzer records payloads and, when gate is set, blocks until it is closed.
type fakeAnalyzer struct {
	mu       sync.Mutex
	result   analysis.Result
	err      error
	panicMsg string
	gate     chan struct{}
	payloads []string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, payload string) (analysis.Result, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.result, f.err
}

func (f *fakeAnalyzer) set(res analysis.Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result = res
	f.err = err
}

func (f *fakeAnalyzer) block() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	return f.gate
}

func (f *fakeAnalyzer) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.payloads...)
}

func burgerResult() analysis.Result {
	rec, _ := catalog.Default().Lookup("Hambúrguer artesanal com batata frita")
	rec.Confidence = 91
	return analysis.Result{
		FoodRecord: rec,
		Features:   analysis.Features{Complexity: analysis.ComplexityLow, ColorProfile: analysis.ColorWarm, EstimatedItemCount: 2},
		Macros:     analysis.SplitFor(rec),
	}
}

func newTestService(t *testing.T, an Analyzer) *Service {
	t.Helper()
	return &Service{
		Repo:          NewMemoryRepo(),
		Store:         local.New(t.TempDir()),
		Analyzer:      an,
		MaxImageBytes: 1024,
	}
}

func createStaged(t *testing.T, svc *Service) Session {
	t.Helper()
	ctx := context.Background()
	sess, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sess, err = svc.StageImage(ctx, sess.ID, "prato.png", bytes.NewReader(pngBytes(64)))
	if err != nil {
		t.Fatalf("StageImage: %v", err)
	}
	return sess
}

func mustGet(t *testing.T, svc *Service, id string) Session {
	t.Helper()
	sess, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return sess
}

func objectExists(t *testing.T, store object.ObjectStore, key string) bool {
	t.Helper()
	rc, err := store.Open(context.Background(), key)
	if errors.Is(err, object.ErrNotFound) {
		return false
	}
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
	return true
}
