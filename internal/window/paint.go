package window

import (
	"fmt"

	"github.com/bnema/wlcsd/internal/decor"
)

type paintKey struct {
	width, height int32
	color         uint32
}

// relayout recomputes the frame for the current size and redraws every piece,
// then the content. Pieces of equal size and color share one drawable within the
// pass. A piece whose drawable cannot be produced is skipped.
func (a *App) relayout() error {
	width, height := a.win.Size()
	a.frame = decor.Compute(a.metrics, width, height)

	cache := make(map[paintKey]Drawable)
	for _, p := range a.frame.Pieces {
		piece, ok := a.s.Pieces[p.Region]
		if !ok {
			continue
		}
		d, err := a.drawable(cache, p.Rect.Width, p.Rect.Height, a.palette.ColorOf(p.Region))
		if err != nil {
			a.log.Warn("skipping decoration piece", "region", p.Region.String(), "error", err)
			continue
		}
		if err := piece.Show(d, p.Rect.X, p.Rect.Y); err != nil {
			return fmt.Errorf("show %s: %w", p.Region, err)
		}
	}

	c := a.frame.Content
	d, err := a.s.Producer.DrawRect(c.Width, c.Height, a.palette.Background)
	if err != nil {
		// Pieces are synchronized with the main surface and only appear
		// once it commits.
		a.log.Warn("skipping content", "error", err)
		if err := a.s.Content.Commit(); err != nil {
			return fmt.Errorf("commit content: %w", err)
		}
		return nil
	}
	if err := a.s.Content.Show(d); err != nil {
		return fmt.Errorf("show content: %w", err)
	}
	a.log.Debug("relayout", "width", width, "height", height)
	return nil
}

func (a *App) drawable(cache map[paintKey]Drawable, width, height int32, color uint32) (Drawable, error) {
	key := paintKey{width, height, color}
	if d, ok := cache[key]; ok {
		return d, nil
	}
	d, err := a.s.Producer.DrawRect(width, height, color)
	if err != nil {
		return nil, err
	}
	cache[key] = d
	return d, nil
}
