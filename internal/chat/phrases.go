package chat

import (
	"math/rand"
	"sync"
)

// Phrase pools for conversational intents. Data answers are computed; these
// carry no data dependency and one is drawn uniformly at random per reply.
var (
	greetingPhrases = []string{
		"Hi! I'm an EV chatbot. Ask me about the data. You can ask 'longest range', 'cheapest car', or 'info on [Brand]'.",
		"Hello! I know all about the electric cars in my dataset. Try 'longest range', 'fastest car', or 'info on [Brand]'.",
		"Hey there! Ask me anything about the EV dataset, like 'cheapest car' or 'compare Tesla vs BMW'.",
	}

	helpPhrases = []string{
		"I'm an EV chatbot. I can answer things like 'longest range', 'cheapest car', 'fastest car', 'most towing capacity', 'how many cars are there?', 'what brands are available?', 'info on [Brand]', or 'compare [A] vs [B]'.",
		"I answer questions about electric car specs. Try 'longest range', 'cheapest car', 'info on [Brand]', or 'compare [A] vs [B]'.",
	}

	thanksPhrases = []string{
		"You're welcome! Ask me anything else about the cars.",
		"Happy to help! Come back any time.",
		"Glad I could help. See you!",
	}

	fallbackPhrases = []string{
		"Sorry, I don't understand that. Try 'longest range', 'cheapest car', or 'info on [Brand]'.",
		"I didn't catch that. You can ask 'longest range', 'cheapest car', 'fastest car', or 'info on [Brand]'.",
		"Hmm, that's not something I know how to answer. Try 'longest range', 'cheapest car', or 'compare [A] vs [B]'.",
	}

	// Templates for extremum answers. Each takes the same arguments so the
	// reported facts never depend on which phrasing is drawn.
	longestRangePhrases = []string{
		"The car with the longest range is the %s %s, with %s km.",
		"Longest range in the dataset: the %s %s at %s km.",
	}

	cheapestPhrases = []string{
		"The cheapest car is the %s %s, valued at $%s.",
		"Best value for money: the %s %s at $%s.",
	}

	fastestPhrases = []string{
		"The quickest car (0-100 km/h) is the %s %s at %s seconds.",
		"Fastest off the line: the %s %s, hitting 100 km/h in %s seconds.",
	}

	towingPhrases = []string{
		"The car with the most towing capacity is the %s %s, at %s kg.",
		"Top tower in the dataset: the %s %s with %s kg of towing capacity.",
	}
)

// Picker selects a phrase uniformly at random from a pool. The random
// source is injected so tests can pin a seed.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a picker backed by the given source. A nil source
// seeds from the default global source.
func NewPicker(rng *rand.Rand) *Picker {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Picker{rng: rng}
}

// Pick returns one phrase from the pool, chosen uniformly at random.
// An empty pool returns the empty string.
func (p *Picker) Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	if len(pool) == 1 {
		return pool[0]
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.rng.Intn(len(pool))]
}
