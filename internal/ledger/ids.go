package ledger

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// NewParcelID returns "EKS-" followed by six random digits.
func NewParcelID() string {
	return "EKS-" + strconv.Itoa(100000+randInt(900000))
}

// NewMerchantID returns "MID-" followed by five random digits.
func NewMerchantID() string {
	return "MID-" + strconv.Itoa(10000+randInt(90000))
}

// NewTransactionID derives the id from the last six digits of the
// millisecond clock. Two transactions in the same millisecond share an id.
func NewTransactionID(at time.Time) string {
	ms := strconv.FormatInt(at.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return "TX-" + ms
}

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("read random: %v", err))
	}
	return int(v.Int64())
}
