package checkout

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// Transaction references avoid 0 and O so support staff can read them back
// over the phone.
const (
	txRefCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ123456789"
	txRefLength  = 12
)

// ErrTxRefExhausted reports that every generation attempt collided with an
// existing order.
var ErrTxRefExhausted = fmt.Errorf("could not generate a unique transaction reference")

func randomTxRef() (string, error) {
	max := big.NewInt(int64(len(txRefCharset)))
	out := make([]byte, txRefLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		out[i] = txRefCharset[n.Int64()]
	}
	return string(out), nil
}

// generateTxRef draws candidates until one is unused, giving up after the
// configured number of attempts instead of recursing forever.
func generateTxRef(ctx context.Context, exists func(ctx context.Context, ref string) (bool, error), attempts int) (string, error) {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		candidate, err := randomTxRef()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking transaction reference: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrTxRefExhausted
}
