package transcribe

import "errors"

// ErrNoSpeech is returned when the audio decodes fine but contains no
// recognizable speech.
var ErrNoSpeech = errors.New("no speech detected in audio")

// ErrUnsupportedFormat is returned for an audio MIME type the gateway
// does not accept.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ErrAudioTooLarge is returned when the decoded audio exceeds the
// configured size cap.
var ErrAudioTooLarge = errors.New("audio payload too large")

// ErrInvalidAudio is returned when the audio payload is not valid base64.
var ErrInvalidAudio = errors.New("audio payload is not valid base64")

// ErrService is returned when the upstream transcription service fails.
var ErrService = errors.New("transcription service unavailable")
