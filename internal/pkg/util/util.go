package util

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateTimestampWithPrefix builds an identifier like "PO-1716283945123-4821",
// unique enough for order ids without coordination.
func GenerateTimestampWithPrefix(prefix string) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, time.Now().UnixMilli(), rand.Intn(10000))
}
