// Package render produces bitmaps of element boxes which cannot be
// reproduced by native runtime borders. Requests are batched into a single
// HTML capture document with one <div> per element state.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

var ErrRenderTimeout = errors.New("render service did not respond in time")

// Box is a single element state to capture. ID is theme id ("Button",
// "Button.sel"), Style is its flattened CSS in declaration form.
type Box struct {
	ID    string
	Style string
}

// Request is one batched capture.
type Request struct {
	// BaseURL relative url() references are resolved against
	BaseURL string
	// default box size in pixels when style sets none
	Width  int
	Height int
	// density lengths are resolved with
	DPI   int
	Boxes []Box
}

// Result maps box ids to captured snapshots. Snapshot includes room for
// outer shadow.
type Result struct {
	Snapshots map[string]image.Image
}

// Service captures boxes.
type Service interface {
	Submit(ctx context.Context, req Request) *Future
}

// Future is pending result of a submitted request.
type Future struct {
	done chan struct{}
	res  *Result
	err  error
}

// NewFuture returns unresolved future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve completes the future. Only first call has effect.
func (f *Future) Resolve(res *Result, err error) {
	select {
	case <-f.done:
		return
	default:
	}
	f.res, f.err = res, err
	close(f.done)
}

// Done is closed when result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await waits for result at most timeout.
func (f *Future) Await(timeout time.Duration) (*Result, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.res, f.err
	case <-timer.C:
		return nil, fmt.Errorf("%w (%s)", ErrRenderTimeout, timeout)
	}
}
