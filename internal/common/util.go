package common

import "crypto/rand"

// GenerateRandByteArray returns n bytes read from crypto/rand.
// It panics if the system random source fails.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used to drop passwords read from the terminal once they were sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
