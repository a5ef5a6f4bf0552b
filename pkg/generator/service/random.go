package service

import (
	"math/rand"
	"time"
)

// randomDurationMs returns a duration between minMs and maxMs milliseconds,
// inclusive on both ends.
func randomDurationMs(rng *rand.Rand, minMs int, maxMs int) time.Duration {
	return time.Duration(minMs+rng.Intn(maxMs-minMs+1)) * time.Millisecond
}
