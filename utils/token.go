package utils

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTokenPrefix = "SAY"
	tokenMin           = 1000
	tokenMax           = 9999
)

var prefixPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// TokenGenerator produces pickup tokens of the form PREFIX-NNNN. Uniqueness
// is not guaranteed here; callers check each candidate against the store.
type TokenGenerator struct {
	prefix string
	mu     sync.Mutex
	rnd    *rand.Rand
}

func NewTokenGenerator(prefix string) *TokenGenerator {
	return NewTokenGeneratorWithSource(prefix, rand.NewSource(time.Now().UnixNano()))
}

func NewTokenGeneratorWithSource(prefix string, src rand.Source) *TokenGenerator {
	return &TokenGenerator{
		prefix: NormalizeTokenPrefix(prefix),
		rnd:    rand.New(src),
	}
}

// NormalizeTokenPrefix upper-cases the prefix and falls back to the default
// when it is not exactly three letters.
func NormalizeTokenPrefix(prefix string) string {
	p := strings.ToUpper(strings.TrimSpace(prefix))
	if !prefixPattern.MatchString(p) {
		return DefaultTokenPrefix
	}
	return p
}

func (g *TokenGenerator) Prefix() string {
	return g.prefix
}

func (g *TokenGenerator) Next() string {
	g.mu.Lock()
	n := tokenMin + g.rnd.Intn(tokenMax-tokenMin+1)
	g.mu.Unlock()
	return fmt.Sprintf("%s-%d", g.prefix, n)
}

// NormalizeToken trims and upper-cases a token typed in by an operator.
func NormalizeToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}
