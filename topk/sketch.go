// Package topk tracks the countries producing the most blocked attempts over
// a sliding window.
package topk

import (
	"context"
	"sync"
	"time"

	"github.com/caasmo/countryblock/scheduler"
	"github.com/keilerkonzept/topk/sliding"
)

// SketchParams sizes the sliding sketch. The window covers WindowSize ticks.
type SketchParams struct {
	K          int
	WindowSize int
	Width      int
	Depth      int
}

// CountryCount is one entry of the hot list.
type CountryCount struct {
	CountryCode string `json:"countryCode"`
	Count       uint32 `json:"count"`
}

// CountrySketch wraps a sliding sketch, which is not safe for concurrent use.
type CountrySketch struct {
	mu     sync.Mutex
	sketch *sliding.Sketch
}

func New(params SketchParams) *CountrySketch {
	return &CountrySketch{
		sketch: sliding.New(params.K, params.WindowSize, sliding.WithWidth(params.Width), sliding.WithDepth(params.Depth)),
	}
}

// Incr counts one blocked attempt for code.
func (cs *CountrySketch) Incr(code string) {
	cs.mu.Lock()
	cs.sketch.Incr(code)
	cs.mu.Unlock()
}

// Tick advances the window by one slot, expiring the oldest counts.
func (cs *CountrySketch) Tick() {
	cs.mu.Lock()
	cs.sketch.Tick()
	cs.mu.Unlock()
}

// Top returns up to K countries, highest count first. Countries whose
// counts left the window are omitted.
func (cs *CountrySketch) Top() []CountryCount {
	cs.mu.Lock()
	items := cs.sketch.SortedSlice()
	cs.mu.Unlock()

	out := make([]CountryCount, 0, len(items))
	for _, item := range items {
		if item.Count == 0 {
			continue
		}
		out = append(out, CountryCount{CountryCode: item.Item, Count: item.Count})
	}
	return out
}

// Job ticks the sketch every interval.
func (cs *CountrySketch) Job(interval time.Duration) scheduler.Job {
	return scheduler.Job{
		Name:     "top_countries_tick",
		Interval: interval,
		Run: func(context.Context) error {
			cs.Tick()
			return nil
		},
	}
}
