// Package stdinreader reads one JSON document from stdin under strict
// resource budgets: a byte cap, a structural depth cap, a per-read
// timeout, and a total processing-time budget.
package stdinreader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/maos-gate/gate/internal/gateerr"
	"github.com/maos-gate/gate/internal/security"
)

const defaultBufferSize = 64 * 1024

// memoryGrowthWarnBytes is the RSS-growth threshold across a single
// json.Unmarshal above which ReadJSON logs a warning but still succeeds.
const memoryGrowthWarnBytes = 50 * 1024 * 1024

// readRateLimit and readRateBurst pace the read loop's chunk attempts.
// This is a companion to the byte cap, not a replacement for it: it
// smooths a slow-drip stdin writer into evenly-spaced read attempts
// rather than a tight busy loop, without changing the cap's hard
// rejection semantics.
const (
	readRateLimit = rate.Limit(1000)
	readRateBurst = 4
)

// Limits bounds the reader's resource budget.
type Limits struct {
	MaxInputSizeMB      int
	MaxJSONDepth        uint32
	StdinReadTimeoutMs  int64
	MaxProcessingTimeMs int64
}

// Reader reads and parses one JSON document from an io.Reader (stdin in
// production) under the configured Limits.
type Reader struct {
	src     io.Reader
	limits  Limits
	limiter *rate.Limiter
}

// New constructs a Reader over src.
func New(src io.Reader, limits Limits) *Reader {
	return &Reader{src: src, limits: limits, limiter: rate.NewLimiter(readRateLimit, readRateBurst)}
}

func (r *Reader) maxSizeBytes() int64 {
	return int64(r.limits.MaxInputSizeMB) * 1024 * 1024
}

// ReadJSON reads the entire input and unmarshals it into v.
func (r *Reader) ReadJSON(ctx context.Context, v any) error {
	budget := time.Duration(r.limits.MaxProcessingTimeMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	start := time.Now()

	var buf []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := r.readWithTimeout(gctx)
		if err != nil {
			return err
		}
		buf = b
		return nil
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return &gateerr.Timeout{Operation: "total_processing", TimeoutMs: r.limits.MaxProcessingTimeMs}
		}
		return err
	}

	if err := ValidateJSONDepth(buf, r.limits.MaxJSONDepth); err != nil {
		return err
	}

	if time.Since(start) >= budget {
		return &gateerr.Timeout{Operation: "json_parsing", TimeoutMs: r.limits.MaxProcessingTimeMs}
	}

	memBefore, haveBefore := security.MemoryUsage()
	err := json.Unmarshal(buf, v)
	memAfter, haveAfter := security.MemoryUsage()
	if haveBefore && haveAfter {
		warnOnMemoryGrowth(memBefore, memAfter)
	}
	if err != nil {
		return &gateerr.InvalidInput{Message: fmt.Sprintf("invalid JSON input: %v", err)}
	}
	return nil
}

// warnOnMemoryGrowth logs a structured warning, without failing the
// read, when RSS grew by more than memoryGrowthWarnBytes across the
// unmarshal. Growth alone is not attacker-controllable proof of abuse,
// so this is advisory monitoring, not a rejection path.
func warnOnMemoryGrowth(before, after int64) {
	growth := after - before
	if growth > memoryGrowthWarnBytes {
		slog.Warn("high memory consumption during JSON parsing",
			"growth_bytes", growth,
			"rss_before_bytes", before,
			"rss_after_bytes", after,
		)
	}
}

// readWithTimeout loops reading fixed-size chunks, applying a per-read
// timeout and the byte cap before each append.
func (r *Reader) readWithTimeout(ctx context.Context) ([]byte, error) {
	buf := make([]byte, 0, defaultBufferSize)
	scratch := make([]byte, defaultBufferSize)
	maxSize := r.maxSizeBytes()

	for {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		n, err := r.readChunkWithTimeout(ctx, scratch)
		if n > 0 {
			if int64(len(buf)+n) > maxSize {
				return nil, &gateerr.InvalidInput{Message: "input exceeds maximum allowed size for security"}
			}
			buf = append(buf, scratch[:n]...)
		}
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return buf, nil
		}
	}
}

func (r *Reader) readChunkWithTimeout(ctx context.Context, scratch []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	timeout := time.Duration(r.limits.StdinReadTimeoutMs) * time.Millisecond

	go func() {
		n, err := r.src.Read(scratch)
		done <- result{n, err}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(timeout):
		return 0, &gateerr.Timeout{Operation: "stdin_read_operation", TimeoutMs: r.limits.StdinReadTimeoutMs}
	case res := <-done:
		return res.n, res.err
	}
}

// ValidateJSONDepth scans buf tracking '{'/'[' nesting while suppressing
// counts inside JSON string literals (respecting '\' escapes). It
// returns an error if depth ever exceeds maxDepth.
func ValidateJSONDepth(buf []byte, maxDepth uint32) error {
	var depth uint32
	inString := false
	escaped := false

	for _, b := range buf {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{', '[':
			depth++
			if depth > maxDepth {
				return &gateerr.InvalidInput{Message: fmt.Sprintf("JSON nesting depth exceeds configured cap of %d", maxDepth)}
			}
		case '}', ']':
			if depth > 0 {
				depth--
			}
		}
	}
	return nil
}
