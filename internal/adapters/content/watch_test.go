package content_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/pmwiki/internal/adapters/content"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWatcher_Run(t *testing.T) {
	Convey("Given a watched content directory", t, func() {
		dir := t.TempDir()
		So(os.MkdirAll(filepath.Join(dir, "devices"), 0o755), ShouldBeNil)

		changes := make(chan struct{}, 8)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		w := content.NewWatcher(filepath.Join(dir, "**", "*.yaml"), content.WithDebounce(20*time.Millisecond))
		go func() {
			done <- w.Run(ctx, func(context.Context) error {
				changes <- struct{}{}
				return nil
			})
		}()
		defer func() {
			cancel()
			<-done
		}()
		// Let the watcher register its directories.
		time.Sleep(100 * time.Millisecond)

		Convey("When a matching file is written", func() {
			So(os.WriteFile(filepath.Join(dir, "devices", "a.yaml"), []byte(devicesYAML), 0o644), ShouldBeNil)

			Convey("Then onChange is called", func() {
				select {
				case <-changes:
				case <-time.After(5 * time.Second):
					So("no reload", ShouldBeEmpty)
				}
			})
		})

		Convey("When only a non-matching file is written", func() {
			So(os.WriteFile(filepath.Join(dir, "devices", "notes.txt"), []byte("x"), 0o644), ShouldBeNil)

			Convey("Then onChange is not called", func() {
				select {
				case <-changes:
					So("unexpected reload", ShouldBeEmpty)
				case <-time.After(300 * time.Millisecond):
				}
			})
		})
	})
}
