package audioinput

import (
	"fmt"
	"time"
)

type State int

const (
	StateUndefined = State(iota)
	StateWaitingForSpeech
	StateCapturing
	StateCompleted
	StateTimedOut
	StateError
)

func (s State) String() string {
	switch s {
	case StateUndefined:
		return "undefined"
	case StateWaitingForSpeech:
		return "waiting_for_speech"
	case StateCapturing:
		return "capturing"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed_out"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("unexpected_state_%d", int(s))
}

func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateTimedOut, StateError:
		return true
	}
	return false
}

// Segmenter turns a stream of classified frames into one utterance. It keeps
// a short ring of pre-speech frames so the beginning of a word is not
// clipped, and endpoints the utterance once trailing silence outlasts the
// configured padding. It holds no clock of its own: the owner feeds frames
// and decides about timeouts.
type Segmenter struct {
	FrameDuration  time.Duration
	PadStartFrames int
	PadEndDuration time.Duration
	MaxFrames      int

	state              State
	pending            [][]byte
	accumulated        [][]byte
	consecutiveSilence int
}

func NewSegmenter(
	frameDuration time.Duration,
	padStart time.Duration,
	padEnd time.Duration,
	maxFrames int,
	waitForSpeech bool,
) *Segmenter {
	state := StateCapturing
	if waitForSpeech {
		state = StateWaitingForSpeech
	}
	padStartFrames := 0
	if frameDuration > 0 {
		padStartFrames = int(padStart / frameDuration)
	}
	return &Segmenter{
		FrameDuration:  frameDuration,
		PadStartFrames: padStartFrames,
		PadEndDuration: padEnd,
		MaxFrames:      maxFrames,
		state:          state,
	}
}

func (s *Segmenter) State() State {
	return s.state
}

// Feed advances the machine by one classified frame and returns the
// resulting state. Once the state is terminal, further frames are ignored.
func (s *Segmenter) Feed(frame []byte, isSpeech bool) State {
	switch s.state {
	case StateWaitingForSpeech:
		s.feedWaiting(frame, isSpeech)
	case StateCapturing:
		s.feedCapturing(frame, isSpeech)
	}
	return s.state
}

func (s *Segmenter) feedWaiting(frame []byte, isSpeech bool) {
	if !isSpeech {
		if s.PadStartFrames <= 0 {
			return
		}
		s.pending = append(s.pending, frame)
		if len(s.pending) > s.PadStartFrames {
			s.pending = s.pending[1:]
		}
		return
	}

	// speech onset: the lead-in padding comes from the pending ring
	s.accumulated = append(s.accumulated, s.pending...)
	s.accumulated = append(s.accumulated, frame)
	s.pending = nil
	s.consecutiveSilence = 0
	s.state = StateCapturing
	s.checkMaxFrames()
}

func (s *Segmenter) feedCapturing(frame []byte, isSpeech bool) {
	s.accumulated = append(s.accumulated, frame)
	if s.checkMaxFrames() {
		return
	}

	if isSpeech {
		s.consecutiveSilence = 0
		return
	}
	s.consecutiveSilence++
	silenceDuration := time.Duration(s.consecutiveSilence) * s.FrameDuration
	if silenceDuration > s.PadEndDuration {
		s.state = StateCompleted
	}
}

// checkMaxFrames enforces the hard cap from the requested capture duration;
// it takes precedence over silence endpointing.
func (s *Segmenter) checkMaxFrames() bool {
	if s.MaxFrames > 0 && len(s.accumulated) >= s.MaxFrames {
		s.state = StateCompleted
		return true
	}
	return false
}

// MarkTimedOut preempts any non-terminal state; whatever was accumulated so
// far stays available via Bytes.
func (s *Segmenter) MarkTimedOut() {
	if s.state.IsTerminal() {
		return
	}
	s.state = StateTimedOut
}

func (s *Segmenter) MarkError() {
	if s.state.IsTerminal() {
		return
	}
	s.state = StateError
}

func (s *Segmenter) FrameCount() int {
	return len(s.accumulated)
}

// Bytes returns the captured utterance as one contiguous PCM buffer.
func (s *Segmenter) Bytes() []byte {
	size := 0
	for _, frame := range s.accumulated {
		size += len(frame)
	}
	if size == 0 {
		return nil
	}
	buf := make([]byte, 0, size)
	for _, frame := range s.accumulated {
		buf = append(buf, frame...)
	}
	return buf
}
