package chart

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/i474232898/weatherbeats/internal/store"
)

type countsFunc func(ctx context.Context, limit int) ([]store.MoodCount, error)

func (f countsFunc) TopMoodCounts(ctx context.Context, limit int) ([]store.MoodCount, error) {
	return f(ctx, limit)
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestBuild(t *testing.T) {
	var gotLimit int
	src := countsFunc(func(ctx context.Context, limit int) ([]store.MoodCount, error) {
		gotLimit = limit
		return []store.MoodCount{{Mood: "Happy", Count: 12}, {Mood: "Sad", Count: 7}, {Mood: "Calm", Count: 7}}, nil
	})

	img, err := Build(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != TopMoods {
		t.Fatalf("expected limit %d, got %d", TopMoods, gotLimit)
	}

	raw, err := img.Bytes()
	if err != nil {
		t.Fatalf("image is not valid base64: %v", err)
	}
	if !bytes.HasPrefix(raw, pngSignature) {
		t.Fatalf("image is not a PNG")
	}
}

func TestBuildErrors(t *testing.T) {
	empty := countsFunc(func(ctx context.Context, limit int) ([]store.MoodCount, error) {
		return nil, nil
	})
	if _, err := Build(context.Background(), empty); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	boom := errors.New("db down")
	failing := countsFunc(func(ctx context.Context, limit int) ([]store.MoodCount, error) {
		return nil, boom
	})
	if _, err := Build(context.Background(), failing); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestRenderSingleBar(t *testing.T) {
	png, err := RenderPNG([]store.MoodCount{{Mood: "Calm", Count: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(png, pngSignature) {
		t.Fatalf("output is not a PNG")
	}
}
