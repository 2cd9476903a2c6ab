package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/3lfar7/tripadvparser/collect"
	"go.uber.org/zap"
)

type outcome struct {
	src    string
	result collect.Result
	err    error
}

// runParallel extracts one record per page with r.workers goroutines. Every
// worker owns a session; printing and storage stay on the calling goroutine.
func (r *Runner) runParallel(parent context.Context, sources []string) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	workerCh := make(chan string)
	out := make(chan outcome)

	go r.schedule(ctx, sources, workerCh)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.createWork(ctx, workerCh, out)
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	return r.handleResult(parent, cancel, out)
}

func (r *Runner) schedule(ctx context.Context, sources []string, workerCh chan<- string) {
	defer close(workerCh)

	for _, src := range sources {
		select {
		case workerCh <- src:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) createWork(ctx context.Context, in <-chan string, out chan<- outcome) {
	session := r.newSession()

	for src := range in {
		o := outcome{src: src}
		if err := r.feed(ctx, session, src); err != nil {
			o.err = err
		} else {
			o.result, o.err = session.Finalize()
		}

		select {
		case out <- o:
		case <-ctx.Done():
			return
		}
	}
}

// handleResult 收集结果，第一个不可跳过的错误会取消剩余的页面
func (r *Runner) handleResult(parent context.Context, cancel context.CancelFunc, out <-chan outcome) error {
	var firstErr error

	for o := range out {
		if firstErr != nil {
			continue
		}

		err := o.err
		if err != nil && r.skip(err) {
			r.logger.Error("page skipped", zap.String("source", o.src), zap.Error(err))
			continue
		}
		if err != nil {
			err = fmt.Errorf("%s:%w", o.src, err)
		} else {
			err = r.emit(o.src, o.result)
		}
		if err != nil {
			firstErr = err
			cancel()
		}
	}

	if firstErr == nil {
		firstErr = parent.Err()
	}

	return firstErr
}
