package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllWhenOneFails(t *testing.T) {
	failing := &fakeService{name: "http", startErr: errors.New("bind failed")}
	blocking := &fakeService{name: "worker", block: true}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "bind failed" {
		t.Fatalf("want bind failed got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
}

func TestRunnerCanceledContextReturnsNil(t *testing.T) {
	blocking := &fakeService{name: "worker", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRunner(blocking).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("canceled run should return nil, got %v", err)
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error without services")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{Mode: " Worker "})
	if opts.Mode != ModeWorker || opts.Logger == nil || opts.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if normalizeOptions(Options{}).Mode != ModeAll {
		t.Fatalf("empty mode should default to all")
	}
}

type failingStopService struct {
	fakeService
}

func (s *failingStopService) Stop(ctx context.Context) error {
	return errors.New("flush failed")
}

func TestRunnerReportsStopFailure(t *testing.T) {
	svc := &failingStopService{fakeService: fakeService{name: "worker", block: true}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewRunner(svc).Run(ctx, time.Second, nil)
	if err == nil || err.Error() != "stop worker: flush failed" {
		t.Fatalf("want stop failure, got %v", err)
	}
}

func TestHTTPServiceName(t *testing.T) {
	svc := NewHTTPService(":0", nil)
	if svc.Name() != "http" {
		t.Fatalf("unexpected name: %s", svc.Name())
	}
	if svc.server.ReadHeaderTimeout != readHeaderTimeout {
		t.Fatalf("read header timeout should be set")
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop idle server failed: %v", err)
	}
}

func TestRunnerReleasesResourcesAfterStop(t *testing.T) {
	svc := &fakeService{name: "http", block: true}
	runner := NewRunner(svc)
	var released atomic.Bool
	runner.OnStop(func() error {
		if !svc.stopped.Load() {
			t.Errorf("resources released before services stopped")
		}
		released.Store(true)
		return nil
	})
	runner.OnStop(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !released.Load() {
		t.Fatalf("registered closer should run")
	}
}

func TestRunnerReportsReleaseFailure(t *testing.T) {
	runner := NewRunner(&fakeService{name: "http", block: true})
	runner.OnStop(func() error { return errors.New("client closed twice") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runner.Run(ctx, time.Second, nil)
	if err == nil || err.Error() != "release resources: client closed twice" {
		t.Fatalf("unexpected error: %v", err)
	}
}
