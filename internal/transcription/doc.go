// Package transcription talks to speech-to-text providers.
//
// The AssemblyAI client follows the provider's asynchronous protocol: upload
// the audio, submit a transcript request, then poll under a PollPolicy until
// the transcript completes, errors, or the attempt budget runs out. The
// OpenAI client is synchronous. Both return a provider-neutral Result with
// word timings in seconds.
package transcription
