package pkg

import (
	"math/rand"
	"time"
)

var seeded = rand.New(rand.NewSource(time.Now().UnixNano()))

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandString returns an n-char session code.
func RandString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[seeded.Intn(len(letters))]
	}
	return string(b)
}
