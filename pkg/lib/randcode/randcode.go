// Package randcode draws short random codes from an alphabet and retries until
// a caller-supplied predicate reports the code as free.
package randcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	DefaultLength      = 6
	DefaultMaxAttempts = 30
)

var (
	ErrCodeSpaceExhausted = errors.New("code space exhausted")
	ErrInvalidAlphabet    = errors.New("alphabet must hold between 2 and 256 bytes")
)

// TakenFunc reports whether code is already in use.
type TakenFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	Alphabet    string
	Length      int
	MaxAttempts int
	// Rand defaults to crypto/rand.Reader.
	Rand io.Reader
}

func New() *Generator {
	return &Generator{
		Alphabet:    Alphanumeric,
		Length:      DefaultLength,
		MaxAttempts: DefaultMaxAttempts,
	}
}

func (g *Generator) Attempts() int {
	if g.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return g.MaxAttempts
}

// Generate draws up to Attempts() codes and returns the first one taken reports
// as free. Errors from taken are returned as is and stop the loop.
func (g *Generator) Generate(ctx context.Context, taken TakenFunc) (string, error) {
	const op = "randcode.Generate"

	for attempt := 0; attempt < g.Attempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}

		code, err := g.Draw()
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}

		busy, err := taken(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !busy {
			return code, nil
		}
	}

	return "", fmt.Errorf("%s: %d attempts: %w", op, g.Attempts(), ErrCodeSpaceExhausted)
}

// Draw returns one candidate code without any uniqueness check.
func (g *Generator) Draw() (string, error) {
	alphabet := g.Alphabet
	if alphabet == "" {
		alphabet = Alphanumeric
	}
	if len(alphabet) < 2 || len(alphabet) > 256 {
		return "", ErrInvalidAlphabet
	}

	length := g.Length
	if length <= 0 {
		length = DefaultLength
	}

	src := g.Rand
	if src == nil {
		src = rand.Reader
	}

	// bytes at or above limit are rejected so every symbol is equally likely
	limit := 256 - 256%len(alphabet)

	code := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(code) < length {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, alphabet[int(b)%len(alphabet)])
			if len(code) == length {
				break
			}
		}
	}

	return string(code), nil
}
