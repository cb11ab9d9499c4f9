// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/backapirest/samsynth/internal/watch"
)

// watch generates once, then regenerates after every debounced batch of
// source changes until ctx is canceled. Failed runs are reported and the
// watcher keeps going so the user can fix the tree and save again.
func (r *runner) watch(ctx context.Context) error {
	baseDir, err := r.baseDir()
	if err != nil {
		return err
	}
	// The outputs to ignore come from the config, which must load up front.
	cfg, _, err := r.loadConfig(ctx, baseDir)
	if err != nil {
		return err
	}

	regenerate := func(ctx context.Context) {
		if err := r.generate(ctx); err != nil {
			fmt.Fprintln(r.stderr, ErrorStyle.Render("✗")+" "+formatErrorForDisplay(err, r.flags.verbose))
		}
	}
	regenerate(ctx)

	w, err := watch.New(watch.Options{
		BaseDir: baseDir,
		Ignore:  watch.OutputIgnores(cfg.Output),
		Logger:  r.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			r.logger.Info("change detected", "files", len(changed))
			r.logger.Debug("changed", "paths", changed)
			regenerate(ctx)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	return w.Run(ctx)
}
