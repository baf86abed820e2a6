package helpers

import (
	"fmt"
	"math/rand"
	"time"
)

const transactionPrefix = "TXN"

// GenerateTransactionID builds "TXN" + epoch millis + a random integer in
// [0, 1000). Uniqueness is not guaranteed; collisions are an accepted risk of
// the simulated gateway.
func GenerateTransactionID(now time.Time) string {
	return fmt.Sprintf("%s%d%d", transactionPrefix, now.UnixMilli(), rand.Intn(1000))
}
