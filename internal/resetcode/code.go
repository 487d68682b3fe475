package resetcode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// CodeLength is the number of decimal digits in a verification code.
const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// Generator produces verification codes.
type Generator interface {
	Generate() (string, error)
}

// RandomGenerator draws codes uniformly from 000000-999999.
type RandomGenerator struct {
	// Reader defaults to crypto/rand.Reader.
	Reader io.Reader
}

func (g RandomGenerator) Generate() (string, error) {
	reader := g.Reader
	if reader == nil {
		reader = rand.Reader
	}
	n, err := rand.Int(reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
