package tracker

import "github.com/samuelfneumann/robotac/timestep"

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment. The length recorded for an episode is the zero-based index
// of its last step, so an episode of three steps has length 2.
//
// Note that an episode must finish for this Tracker to record it.
// Episodes cut off before reaching a last timestep are not recorded.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length if t is the last timestep in an
// episode
func (e *EpisodeLength) Track(t timestep.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number-1))
	}
}

// Data returns the tracked episode lengths
func (e *EpisodeLength) Data() []float64 {
	return append([]float64(nil), e.episodeLengths...)
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() error {
	return save(e.filename, e.episodeLengths)
}
