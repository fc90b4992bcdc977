package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"", false},
		{"@every 5m", false},
		{"*/10 * * * *", false},
		{"every five minutes", true},
		{"* * *", true},
	}
	for _, tt := range tests {
		if err := ValidateSchedule(tt.spec); (err != nil) != tt.wantErr {
			t.Errorf("ValidateSchedule(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
		}
	}
}

func TestScheduler_RunsJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	done := make(chan struct{}, 1)
	err := s.Add(Job{
		Name:     "tick",
		Schedule: "@every 1s",
		Run: func(ctx context.Context) error {
			if runs.Add(1) == 1 {
				done <- struct{}{}
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, ok := s.Next("tick"); !ok {
		t.Error("Next(tick) not found")
	}
	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestScheduler_EmptyScheduleDisabled(t *testing.T) {
	s := NewScheduler(nil)
	if err := s.Add(Job{Name: "off", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(s.Jobs()) != 0 {
		t.Errorf("Jobs() = %v, want none", s.Jobs())
	}
}

func TestScheduler_BadSchedule(t *testing.T) {
	s := NewScheduler(nil)
	if err := s.Add(Job{Name: "bad", Schedule: "nope", Run: func(context.Context) error { return nil }}); err == nil {
		t.Error("Add() should reject a bad schedule")
	}
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	started := make(chan struct{})
	var sawCancel atomic.Bool
	_ = s.Add(Job{
		Name:     "slow",
		Schedule: "@every 1s",
		Run: func(ctx context.Context) error {
			select {
			case started <- struct{}{}:
			default:
			}
			<-ctx.Done()
			sawCancel.Store(true)
			return ctx.Err()
		},
	})
	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if !sawCancel.Load() {
		t.Error("running job was not cancelled")
	}
}

func TestRefreshJob(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fail := errors.New("Erreur HTTP 503")
	calls := 0
	job := RefreshJob(RefreshFunc(func(context.Context) error {
		calls++
		if calls == 2 {
			return fail
		}
		return nil
	}), "@every 5m", time.Second, zap.New(core))

	if job.Name != "community-refresh" || job.Schedule != "@every 5m" {
		t.Errorf("job = %+v", job)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Errorf("first run error = %v", err)
	}
	if err := job.Run(context.Background()); !errors.Is(err, fail) {
		t.Errorf("second run error = %v, want %v", err, fail)
	}
	if logs.FilterMessage("scheduled refresh incomplete").Len() != 1 {
		t.Errorf("expected one warning, got %v", logs.All())
	}
}
