// Package facts supplies the dental-hygiene facts shown while brushing.
package facts

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
)

// ErrNoFacts is returned when the provider has nothing to show.
var ErrNoFacts = errors.New("no facts available")

// Default is the built-in fact list.
var Default = []string{
	"Brushing for two full minutes removes far more plaque than a quick 45-second scrub.",
	"Tooth enamel is the hardest substance in the human body.",
	"Replace your toothbrush every three to four months, or sooner if the bristles fray.",
	"Bacteria on the tongue are a leading cause of bad breath.",
	"Fluoride helps rebuild weakened enamel before a cavity forms.",
	"Flossing reaches the 35% of tooth surfaces a brush cannot.",
	"Plaque begins to harden into tartar within 24 to 72 hours.",
	"Brush at a 45-degree angle toward the gumline.",
	"Saliva neutralizes acids and washes away food particles.",
	"Wait about 30 minutes after acidic food or drink before brushing.",
	"Adults have 32 teeth, including the four wisdom teeth.",
	"Gum disease has been linked to heart disease and diabetes.",
	"Soft bristles clean just as well as hard ones and are gentler on gums.",
	"Sugary snacks between meals give bacteria a steady food supply.",
	"Drinking water after meals helps rinse away sugars and acids.",
	"Each tooth is as unique as a fingerprint.",
	"Regular dental checkups catch problems before they hurt.",
	"Electric and manual toothbrushes both work when used correctly.",
	"Rinsing right after brushing washes away the fluoride from toothpaste.",
	"The average person spends about 38 days brushing over a lifetime.",
}

// Provider picks a random fact from a fixed list.
type Provider struct {
	mu    sync.Mutex
	facts []string
	rng   *rand.Rand
}

// New returns a Provider over facts, seeded from the runtime source.
func New(facts []string) *Provider {
	return NewSeeded(facts, rand.Uint64(), rand.Uint64())
}

// NewSeeded returns a Provider with a deterministic sequence.
func NewSeeded(facts []string, seed1, seed2 uint64) *Provider {
	return &Provider{
		facts: facts,
		rng:   rand.New(rand.NewPCG(seed1, seed2)),
	}
}

// RandomFact returns one fact chosen uniformly.
func (p *Provider) RandomFact() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.facts) == 0 {
		return "", ErrNoFacts
	}
	return p.facts[p.rng.IntN(len(p.facts))], nil
}

// Len returns the number of facts.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.facts)
}

// LoadFile reads one fact per line, skipping blanks and lines starting with #.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open facts file: %w", err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read facts file: %w", err)
	}
	return out, nil
}
