package energy

const (
	// One-sided EMA over ambient (non-speech) energy. The floor tracks the
	// noise level from below, biased AmbientBias above the sampled ambient
	// energy so that breathing/room noise does not flip frames to speech.
	SmoothingKeep   = 0.95
	SmoothingUpdate = 0.05
	AmbientBias     = 1.5
)

// Threshold is the adaptive silence-energy floor. It is fed exclusively with
// the RMS of frames already classified as silence; speech frames must never
// reach Observe, otherwise loud speech would inflate the floor and
// progressively swallow the utterance.
type Threshold struct {
	Floor   float64
	Dynamic bool
}

func NewThreshold(initial float64, dynamic bool) *Threshold {
	if initial < 0 {
		initial = 0
	}
	return &Threshold{
		Floor:   initial,
		Dynamic: dynamic,
	}
}

// Observe feeds the RMS of one silence frame into the floor estimate.
// No-op when the threshold is static.
func (t *Threshold) Observe(rms float64) {
	if !t.Dynamic {
		return
	}
	if rms < 0 {
		return
	}
	t.Floor = SmoothingKeep*t.Floor + SmoothingUpdate*(AmbientBias*rms)
}

func (t *Threshold) Current() float64 {
	return t.Floor
}
