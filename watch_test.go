package inkwell

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWatchDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, zerolog.Nop(), []string{dir, filepath.Join(dir, "missing")}, 100*time.Millisecond, func(context.Context) {
			calls <- struct{}{}
		})
	}()
	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "post.md"), []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("callback not invoked")
	}
	select {
	case <-calls:
		t.Fatal("burst of writes triggered more than one callback")
	case <-time.After(300 * time.Millisecond):
	}

	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("new directory not seen")
	}
	if err := os.WriteFile(filepath.Join(sub, "deep.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("change in a new subdirectory not seen")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}
