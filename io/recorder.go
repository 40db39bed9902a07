package io

// Recorder keeps a copy of every presented frame.
type Recorder struct {
	Limit  int        // Frames to keep, oldest dropped first; 0 keeps all.
	Frames [][]uint32 // Presented frames, oldest first.
}

var _ Sink = (*Recorder)(nil)

func (rec *Recorder) Present(frame []uint32) (err error) {
	rec.Frames = append(rec.Frames, append([]uint32(nil), frame...))
	if rec.Limit > 0 && len(rec.Frames) > rec.Limit {
		rec.Frames = rec.Frames[len(rec.Frames)-rec.Limit:]
	}

	return
}

// Last returns the most recent frame, or nil if none was presented.
func (rec *Recorder) Last() []uint32 {
	if len(rec.Frames) == 0 {
		return nil
	}

	return rec.Frames[len(rec.Frames)-1]
}

// Reset forgets all recorded frames.
func (rec *Recorder) Reset() {
	rec.Frames = nil
}
