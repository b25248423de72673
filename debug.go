package sinerider

import (
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-frame timing and draw metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	collectTime time.Duration
	sortTime    time.Duration
	drawTime    time.Duration
	entryCount  int
	drawCalls   int
	unbuffered  int
}

// debugLog reports timing and draw stats at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	total := stats.collectTime + stats.sortTime + stats.drawTime
	s.log.Debug("draw",
		zap.Duration("collect", stats.collectTime),
		zap.Duration("sort", stats.sortTime),
		zap.Duration("draw", stats.drawTime),
		zap.Duration("total", total),
		zap.Int("entries", stats.entryCount),
		zap.Int("drawCalls", stats.drawCalls),
		zap.Int("unbuffered", stats.unbuffered),
		zap.Int("buffers", len(s.buffers)))
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(s *Scene, e *Entity) {
	depth := 0
	for p := e; p != nil; p = s.get(p.parent) {
		depth++
	}
	if depth > debugMaxTreeDepth {
		s.log.Warn("tree depth exceeds threshold",
			zap.String("entity", e.Name),
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth))
	}
}

// debugCheckChildCount warns if an entity has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(s *Scene, e *Entity) {
	if len(e.children) > debugMaxChildCount {
		s.log.Warn("child count exceeds threshold",
			zap.String("entity", e.Name),
			zap.Int("children", len(e.children)),
			zap.Int("threshold", debugMaxChildCount))
	}
}
