package main

import "math/rand"

// MotionSample is one accelerometer-derived position update for a player.
type MotionSample struct {
	X        int
	Y        int
	PlayerID int
}

// MotionSource produces the samples the motion relay broadcasts. Next
// returns false when no sample is available, which the relay treats as a
// skipped tick, not an error.
type MotionSource interface {
	Next() (MotionSample, bool)
}

// SimulatedSource replays a pre-generated batch of uniform samples, the
// stand-in used when no hardware accelerometer is attached. Once the batch
// is exhausted it stays exhausted.
type SimulatedSource struct {
	samples []MotionSample
	index   int
}

// NewSimulatedSource generates n samples with x in [100,700], y in
// [100,500] and a random player slot.
func NewSimulatedSource(n int) *SimulatedSource {
	samples := make([]MotionSample, n)
	for i := range samples {
		samples[i] = MotionSample{
			X:        rand.Intn(601) + 100,
			Y:        rand.Intn(401) + 100,
			PlayerID: rand.Intn(2) + 1,
		}
	}
	return &SimulatedSource{samples: samples}
}

func (s *SimulatedSource) Next() (MotionSample, bool) {
	if s.index >= len(s.samples) {
		return MotionSample{}, false
	}
	sample := s.samples[s.index]
	s.index++
	return sample, true
}

// FeedSource is a bounded buffer fed by live accelerometer ingestion over
// the TCP channel. Pushing into a full buffer drops the sample: the relay
// runs at a fixed 20 Hz and stale motion data is worthless.
type FeedSource struct {
	ch chan MotionSample
}

// NewFeedSource creates a feed with the given buffer capacity.
func NewFeedSource(capacity int) *FeedSource {
	return &FeedSource{ch: make(chan MotionSample, capacity)}
}

// Push offers a sample to the feed, reporting whether it was accepted.
func (f *FeedSource) Push(sample MotionSample) bool {
	select {
	case f.ch <- sample:
		return true
	default:
		return false
	}
}

func (f *FeedSource) Next() (MotionSample, bool) {
	select {
	case sample := <-f.ch:
		return sample, true
	default:
		return MotionSample{}, false
	}
}
