package quiz

import "math/rand"

const (
	// OptionCount is the number of choices shown per question
	OptionCount = 4

	DefaultMaxAttempts = 10
	DefaultFiller      = "---"
)

// Sampler produces multiple choice options: the correct answer plus three
// distractors drawn from a universe of candidate answers.
type Sampler struct {
	rnd         *rand.Rand
	MaxAttempts int
	Filler      string
}

// NewSampler creates a sampler with the default retry bound and filler
func NewSampler(rnd *rand.Rand) *Sampler {
	return &Sampler{rnd: rnd, MaxAttempts: DefaultMaxAttempts, Filler: DefaultFiller}
}

// Options returns OptionCount shuffled options containing correct exactly once.
// Each attempt samples three universe entries without replacement and accepts
// them when all four values are pairwise distinct. When no attempt succeeds,
// for example because the universe is small or full of duplicates, the
// distractors are replaced by the filler string.
func (s *Sampler) Options(correct string, universe []string) []string {
	distractors := OptionCount - 1

	if len(universe) >= distractors {
		for attempt := 0; attempt < s.MaxAttempts; attempt++ {
			options := append(s.sample(universe, distractors), correct)
			if distinct(options) {
				s.shuffle(options)
				return options
			}
		}
	}

	options := []string{correct}
	for len(options) < OptionCount {
		options = append(options, s.Filler)
	}
	s.shuffle(options)
	return options
}

// sample draws n values without replacement using a partial Fisher-Yates
// over an index slice, leaving universe untouched.
func (s *Sampler) sample(universe []string, n int) []string {
	idx := make([]int, len(universe))
	for i := range idx {
		idx[i] = i
	}
	out := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		j := i + s.rnd.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, universe[idx[i]])
	}
	return out
}

func (s *Sampler) shuffle(options []string) {
	s.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

func distinct(values []string) bool {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
