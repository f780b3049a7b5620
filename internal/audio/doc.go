// Package audio handles WAV container encoding and inspection.
// Captured PCM audio is wrapped into mono 16-bit WAV at capture finalization,
// and stored clips can be validated and measured without full decoding.
package audio
