package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"
)

// encodeTestPNG renders a solid image of the given colour and returns its PNG bytes.
func encodeTestPNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeCacheSharesIdenticalBytes(t *testing.T) {
	cache := NewDecodeCache(time.Minute, 0)
	data := encodeTestPNG(t, 10, 10, color.White)

	first, err := cache.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	second, err := cache.Decode(append([]byte(nil), data...))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if first != second {
		t.Error("identical bytes should share one cache entry")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}

	if _, err := cache.Decode(encodeTestPNG(t, 10, 10, color.Black)); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if cache.Len() != 2 {
		t.Errorf("Len: got %d, want 2", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", cache.Len())
	}
}

func TestDecodeCacheDoesNotCacheFailures(t *testing.T) {
	cache := NewDecodeCache(time.Minute, 4)
	if _, err := cache.Decode([]byte("not an image")); err == nil {
		t.Fatal("expected error for garbage input")
	}
	if cache.Len() != 0 {
		t.Errorf("failed decode was cached")
	}
}

func TestDecodeCacheConcurrent(t *testing.T) {
	cache := NewDecodeCache(time.Minute, 0)
	data := encodeTestPNG(t, 32, 32, color.RGBA{R: 200, A: 255})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Decode(data); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Decode failed: %v", err)
	}
}

func TestDecodeRejectsEmpty(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Error("expected error for empty input")
	}
}
