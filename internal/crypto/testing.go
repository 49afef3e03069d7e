package crypto

import "io"

// SetRandReaderForTesting swaps the random source behind the key, nonce,
// and salt generators so tests can simulate entropy failure or fixed
// output. It returns a restore function; callers must defer it.
func SetRandReaderForTesting(r io.Reader) func() {
	original := randReader
	randReader = r
	return func() { randReader = original }
}
