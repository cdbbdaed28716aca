package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"campusguard/internal/model"
	"campusguard/internal/service/pipeline"
)

// cameraWorker owns the device of one bound camera for the duration of a run.
// The device is opened lazily and reopened after a failed open, so a camera
// that is unplugged at start can still join later cycles.
type cameraWorker struct {
	binding model.CameraBinding
	opener  pipeline.Opener

	busy   atomic.Bool
	mu     sync.Mutex
	src    pipeline.Source
	closed bool
}

func newCameraWorker(binding model.CameraBinding, opener pipeline.Opener) *cameraWorker {
	return &cameraWorker{binding: binding, opener: opener}
}

func (w *cameraWorker) read() (image.Image, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, fmt.Errorf("%w: %s released", model.ErrCapture, w.binding)
	}
	if w.src == nil {
		src, err := w.opener.Open(w.binding.Camera)
		if err != nil {
			return nil, wrapCapture(w.binding, err)
		}
		w.src = src
	}

	frame, err := w.src.Read()
	if err != nil {
		return nil, wrapCapture(w.binding, err)
	}
	return frame, nil
}

func (w *cameraWorker) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	if w.src == nil {
		return nil
	}
	err := w.src.Close()
	w.src = nil
	return err
}

func wrapCapture(binding model.CameraBinding, err error) error {
	if errors.Is(err, model.ErrCapture) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", model.ErrCapture, binding, err)
}

// frameResult is what one camera produced in one cycle.
type frameResult struct {
	binding    model.CameraBinding
	detections []model.ResolvedDetection
	err        error
}

// processFunc turns one frame into detections.
type processFunc func(ctx context.Context, binding model.CameraBinding, frame image.Image) ([]model.ResolvedDetection, error)

// sweep reads and processes one frame from every camera concurrently and
// returns the results in worker order. Each camera gets at most timeout; a
// camera whose previous read is still running is skipped.
func sweep(ctx context.Context, workers []*cameraWorker, timeout time.Duration, process processFunc) []frameResult {
	results := make([]frameResult, len(workers))
	pending := make([]chan frameResult, len(workers))

	for i, w := range workers {
		results[i] = frameResult{binding: w.binding}
		if !w.busy.CompareAndSwap(false, true) {
			results[i].err = fmt.Errorf("%w: %s still reading a previous frame", model.ErrCapture, w.binding)
			continue
		}

		ch := make(chan frameResult, 1)
		pending[i] = ch
		go func(w *cameraWorker) {
			defer w.busy.Store(false)

			res := frameResult{binding: w.binding}
			frame, err := w.read()
			if err != nil {
				res.err = err
				ch <- res
				return
			}
			res.detections, res.err = process(ctx, w.binding, frame)
			ch <- res
		}(w)
	}

	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for i, ch := range pending {
		if ch == nil {
			continue
		}
		select {
		case res := <-ch:
			results[i] = res
		case <-deadline.Done():
			results[i].err = fmt.Errorf("%w: %s timed out after %s", model.ErrCapture, workers[i].binding, timeout)
		}
	}
	return results
}

// releaseAll closes every worker's device. Devices stuck in a read are given
// up to timeout before release is abandoned.
func releaseAll(workers []*cameraWorker, timeout time.Duration) []error {
	errs := make([]error, len(workers))
	var wg sync.WaitGroup
	for i, w := range workers {
		wg.Add(1)
		go func(i int, w *cameraWorker) {
			defer wg.Done()
			errs[i] = w.close()
		}(i, w)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return errs
	case <-time.After(timeout):
		return []error{fmt.Errorf("%w: camera release timed out after %s", model.ErrCapture, timeout)}
	}
}
