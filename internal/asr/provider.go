// Package asr defines the Provider interface for speech-to-text backends.
//
// Unlike a streaming voice pipeline, transcript review works on whole
// recordings: a provider takes a complete audio file and returns one
// [Transcription] with per-word timing and confidence data. Providers that
// support it can also force-align an already-known reference text against the
// audio ([Provider.Align]), which yields word timings without re-recognising
// the words.
//
// Implementations must be safe for concurrent use.
package asr

import (
	"context"
	"errors"
	"io"
)

// ErrNotSupported is returned by providers for operations they cannot
// perform, such as forced alignment on a hosted API.
var ErrNotSupported = errors.New("asr: operation not supported")

// Request describes one transcription or alignment job.
type Request struct {
	// Audio is the encoded audio stream (wav, mp3, m4a, ogg).
	Audio io.Reader

	// Filename is the original file name; providers use its extension to
	// pick a decoder.
	Filename string

	// Language is the BCP 47 tag to recognise ("yi", "en", …). Empty lets
	// the provider auto-detect.
	Language string

	// Text is the reference text for forced alignment. Ignored by
	// [Provider.Transcribe].
	Text string
}

// WordTiming is one recognised or aligned word with its position in the
// audio.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// Confidence is the provider's word probability in [0, 1]. Nil when the
	// provider does not report one.
	Confidence *float64 `json:"confidence"`
}

// Transcription is the result of a transcription or alignment run.
type Transcription struct {
	// Text is the full transcript. For forced alignment it echoes the input
	// reference text.
	Text string `json:"text"`

	// Language is the recognised (or requested) language tag.
	Language string `json:"language"`

	// Duration is the audio length in seconds. Zero when unknown.
	Duration float64 `json:"duration"`

	// Words carries per-word timings in audio order.
	Words []WordTiming `json:"words"`
}

// Provider is the abstraction over any speech-to-text backend.
type Provider interface {
	// Transcribe recognises req.Audio in full and returns the transcription
	// with word-level timings.
	Transcribe(ctx context.Context, req Request) (Transcription, error)

	// Align force-aligns req.Text against req.Audio and returns per-word
	// timings for the given text. Providers without an alignment model
	// return [ErrNotSupported].
	Align(ctx context.Context, req Request) (Transcription, error)
}
