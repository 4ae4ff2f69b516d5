package scheduler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weatherbeats/internal/common"
)

type countingPinger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPinger) Ping(context.Context) error {
	p.calls.Add(1)
	return p.err
}

func TestSchedulerRunsHealthCheck(t *testing.T) {
	p := &countingPinger{}
	s := New(p, 20*time.Millisecond, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for p.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 2 pings, got %d", p.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSchedulerDisabled(t *testing.T) {
	p := &countingPinger{}
	s := New(p, 0, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	time.Sleep(30 * time.Millisecond)
	if got := p.calls.Load(); got != 0 {
		t.Fatalf("expected no pings, got %d", got)
	}
}

func TestCheckLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	p := &countingPinger{err: errors.New("connection refused")}
	s := New(p, time.Minute, common.NewLogger(&buf, "info"))

	s.check()

	if !strings.Contains(buf.String(), "connection refused") {
		t.Fatalf("failure not logged: %q", buf.String())
	}
}
