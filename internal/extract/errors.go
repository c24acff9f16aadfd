package extract

import "errors"

// Each failure mode of an extraction request is a distinct error kind.
// All of them are terminal for the current request; callers surface one
// generic user-facing message and log the precise cause.
var (
	// ErrMissingAPIKey means the Gemini credential is not configured.
	// It is returned before any network call is made.
	ErrMissingAPIKey = errors.New("gemini api key is missing")

	// ErrEmptyResponse means the model returned no text to parse.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrMalformedResponse means the model's text could not be decoded
	// as the expected transaction array.
	ErrMalformedResponse = errors.New("malformed model response")
)
