package weather

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	name  string
	snap  Snapshot
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Current(ctx context.Context, at Coordinates) (Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

func TestServiceCurrentFallsBack(t *testing.T) {
	failing := &fakeProvider{name: "primary", err: errors.New("boom")}
	backup := &fakeProvider{name: "backup", snap: Snapshot{Condition: ConditionClear}}
	unused := &fakeProvider{name: "unused"}

	svc := NewService([]Provider{failing, backup, unused}, nil)
	snap, err := svc.Current(context.Background(), Coordinates{Lat: 1, Lon: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Condition != ConditionClear || snap.Provider != "backup" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Timestamp.IsZero() {
		t.Fatalf("timestamp should be filled in")
	}
	if unused.calls != 0 {
		t.Fatalf("providers after the first success should not be called")
	}
}

func TestServiceCurrentAllFail(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService([]Provider{
		&fakeProvider{name: "a", err: boom},
		&fakeProvider{name: "b", err: ErrMissingAPIKey},
	}, nil)

	_, err := svc.Current(context.Background(), Coordinates{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, boom) || !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected joined provider errors, got %v", err)
	}
}

func TestServiceCurrentNoProviders(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.Current(context.Background(), Coordinates{}); !errors.Is(err, ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}
}
