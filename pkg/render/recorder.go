package render

import (
	"sync"

	"github.com/0x0FACED/go-voronoi/pkg/voronoi"
)

// Frame is one recorded notification of a sweep.
type Frame struct {
	Notification voronoi.Notification
	Snapshot     *voronoi.Snapshot
}

// Recorder is a voronoi.Observer that keeps every snapshot it receives.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *Recorder) Notify(n voronoi.Notification, s *voronoi.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, Frame{Notification: n, Snapshot: s})
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Frame returns the i-th recorded frame.
func (r *Recorder) Frame(i int) (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.frames) {
		return Frame{}, false
	}
	return r.frames[i], true
}

// Seek runs the sweep of v without an observer and snapshots only the n-th
// notification. It returns that frame, the total number of notifications of
// the build and whether frame n exists. v must not have been stepped yet.
func Seek(v *voronoi.Voronoi, n int) (Frame, int, bool, error) {
	var (
		frame Frame
		found bool
		count int
	)
	capture := func(note voronoi.Notification) {
		if count == n {
			frame = Frame{Notification: note, Snapshot: v.Snapshot()}
			found = true
		}
		count++
	}

	for {
		circles := v.Circles()
		done, err := v.Step()
		if err != nil {
			return Frame{}, 0, false, err
		}
		if done {
			capture(voronoi.SweepFinished)
			break
		}
		if v.Circles() > circles {
			capture(voronoi.CircleEventProcessed)
		} else {
			capture(voronoi.SiteEventProcessed)
		}
	}
	if _, err := v.Finish(); err != nil {
		return Frame{}, 0, false, err
	}
	capture(voronoi.ClippingFinished)
	return frame, count, found, nil
}
