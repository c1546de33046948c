// Package elevenlabs implements the narration synthesis provider client.
// Provider-side failures map onto the shared error taxonomy: bad credentials,
// exhausted quota, and everything else as unavailability.
package elevenlabs
