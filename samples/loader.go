package samples

import (
	"context"

	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/ossrs/go-oryx-lib/logger"
	"golang.org/x/sync/errgroup"
)

// Load decodes every sample of the table concurrently and publishes each
// buffer as soon as it is ready. A sample that fails to decode keeps a nil
// buffer, which plays as silence; Load still decodes the others and returns
// the first failure.
func Load(ctx context.Context, t *Table, sampleRate int) error {
	ctx = logger.WithContext(ctx)
	var g errgroup.Group
	for _, s := range t.All() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, err := DecodeFile(s.Path, sampleRate)
			if err != nil {
				logger.Wf(ctx, "sample %v (%v) not loaded, err %+v", s.ID, s.Path, err)
				return errors.Wrapf(err, "sample %v", s.ID)
			}
			s.SetBuffer(buf)
			logger.Tf(ctx, "sample %v kind=%v loaded, frames=%v, duration=%.3fs", s.ID, s.Kind, len(buf.Frames), buf.Duration())
			return nil
		})
	}
	return g.Wait()
}
