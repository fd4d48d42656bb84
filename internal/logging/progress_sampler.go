package logging

import "strings"

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when the label (channel, video) or percentage bucket changes.
type ProgressSampler struct {
	bucketSize float64
	lastLabel  string
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 10%) or when the label changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged.
func (s *ProgressSampler) ShouldLog(done, total int, label string) bool {
	if s == nil {
		return true
	}
	label = strings.TrimSpace(label)
	emit := false
	if label != s.lastLabel {
		s.lastLabel = label
		s.lastBucket = -1
		emit = true
	}
	if total > 0 {
		percent := float64(done) * 100 / float64(total)
		bucket := int(percent / s.bucketSize)
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}
