package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errSinkClosed = errors.New("logger: sink closed")

// sinkOp is either a line to write or, when ack is set, a flush request.
type sinkOp struct {
	line []byte
	ack  chan error
	stop bool
}

// sink fans lines out to every output from a single goroutine.
type sink struct {
	ops  chan sinkOp
	done chan struct{}
	outs []*bufio.Writer

	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

func newSink(outputs []io.Writer, bufSize int) *sink {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	s := &sink{
		ops:  make(chan sinkOp, 256),
		done: make(chan struct{}),
	}
	for _, w := range outputs {
		if w != nil {
			s.outs = append(s.outs, bufio.NewWriterSize(w, bufSize))
		}
	}
	go s.run()
	return s
}

func (s *sink) run() {
	defer close(s.done)
	for op := range s.ops {
		switch {
		case op.ack != nil:
			op.ack <- s.flush()
			if op.stop {
				return
			}
		case len(op.line) > 0:
			s.fail(s.write(op.line))
		}
	}
}

func (s *sink) write(line []byte) error {
	for _, out := range s.outs {
		if _, err := out.Write(line); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (s *sink) flush() error {
	var errs []error
	for _, out := range s.outs {
		errs = append(errs, out.Flush())
	}
	return errors.Join(errs...)
}

func (s *sink) fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

func (s *sink) firstErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Write queues a copy of p. It blocks when the queue is full rather than
// dropping lines.
func (s *sink) Write(p []byte) error {
	if err := s.firstErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	select {
	case <-s.done:
		return errSinkClosed
	default:
	}
	select {
	case s.ops <- sinkOp{line: append([]byte(nil), p...)}:
		return nil
	case <-s.done:
		return errSinkClosed
	}
}

// Flush waits until every queued line reached the outputs.
func (s *sink) Flush() error {
	return s.request(false)
}

// Close flushes and stops the sink. Later writes fail with errSinkClosed.
func (s *sink) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.request(true) })
	if err != nil {
		return err
	}
	return s.firstErr()
}

func (s *sink) request(stop bool) error {
	ack := make(chan error, 1)
	select {
	case s.ops <- sinkOp{ack: ack, stop: stop}:
	case <-s.done:
		return nil
	}
	return <-ack
}
