package portalbridge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
)

// UploadFieldName is the multipart field carrying the file.
const UploadFieldName = "file"

// progressTracker turns byte counts into non-decreasing integer percentages.
type progressTracker struct {
	mu   sync.Mutex
	last int
	fn   func(percent int)
}

func newProgressTracker(fn func(percent int)) *progressTracker {
	return &progressTracker{last: -1, fn: fn}
}

func (p *progressTracker) observe(sent, total int64) {
	percent := 100
	if total > 0 {
		percent = int(sent * 100 / total)
	}
	p.report(percent)
}

func (p *progressTracker) report(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if percent <= p.last {
		return
	}
	p.last = percent
	if p.fn != nil {
		p.fn(percent)
	}
}

// Upload sends content as the single "file" field of a multipart body. Progress
// is reported as integer percentages that never decrease, also across retries,
// and end at 100 on success.
func Upload[T any](ctx context.Context, sdk *PortalBridge, path, fileName string, content io.Reader, onProgress func(percent int), opts ...CallOption) (*ResponseEnvelope[T], error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(UploadFieldName, fileName)
	if err != nil {
		return nil, unknownError(fmt.Errorf("create multipart field: %w", err))
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, unknownError(fmt.Errorf("read upload content: %w", err))
	}
	if err := mw.Close(); err != nil {
		return nil, unknownError(fmt.Errorf("close multipart body: %w", err))
	}

	req := NewRequestContext(http.MethodPost, path, buf.Bytes())
	for _, opt := range opts {
		opt(req)
	}
	req.SetHeader("Content-Type", mw.FormDataContentType())

	tracker := newProgressTracker(onProgress)
	tracker.report(0)
	req.Progress = tracker.observe

	env, err := Do[T](ctx, sdk, req)
	if err != nil {
		return nil, err
	}
	tracker.report(100)
	return env, nil
}
