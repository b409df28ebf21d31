package compiler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// editors often save in several steps, wait for the burst to end
const watchSettle = 300 * time.Millisecond

// Watch compiles input and then recompiles it every time it changes until
// context is canceled. Failed compilations are logged, watching continues.
func (c *Compiler) Watch(ctx context.Context, input, output string) error {
	input, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create file watcher: %w", err)
	}
	defer w.Close()

	// the file itself is replaced by some editors, watch its directory
	if err := w.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("unable to watch %s: %w", filepath.Dir(input), err)
	}

	c.compileLogged(ctx, input, output)
	c.log.Info("Watching for changes", zap.String("input", input))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			c.log.Info("Watch stopped")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != input || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			c.log.Debug("Input changed", zap.Stringer("op", ev.Op))
			if timer == nil {
				timer = time.NewTimer(watchSettle)
			} else {
				timer.Reset(watchSettle)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("File watcher problem", zap.Error(err))
		case <-fire:
			fire = nil
			c.compileLogged(ctx, input, output)
		}
	}
}

func (c *Compiler) compileLogged(ctx context.Context, input, output string) {
	if _, err := c.Compile(ctx, input, output); err != nil {
		c.log.Error("Compilation failed", zap.Error(err))
		name := fmt.Sprintf("failed/%s", filepath.Base(input))
		if err := c.opts.Report.StoreCopy(name, input); err != nil {
			c.log.Debug("Unable to store failed stylesheet in report", zap.Error(err))
		}
	}
}
