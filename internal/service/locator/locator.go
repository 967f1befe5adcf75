// Package locator resolves free-text station names against the gazetteer.
package locator

import (
	"html"
	"strings"

	"ridetrace/internal/model"
	"ridetrace/internal/service/gazetteer"

	"github.com/mozillazg/go-unidecode"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/rs/zerolog"
)

// DefaultMinScore is the lowest similarity accepted as a hit.
const DefaultMinScore = 90

// Scorer returns a similarity in [0, 100]; closer strings score higher.
type Scorer func(a, b string) int

// WeightedScorer is the default Scorer: fuzzywuzzy's WRatio over transliterated input.
func WeightedScorer(a, b string) int {
	return fuzzy.WRatio(normalize(a), normalize(b))
}

// RatioScorer scores plain Levenshtein similarity.
func RatioScorer(a, b string) int {
	return fuzzy.Ratio(normalize(a), normalize(b))
}

func normalize(s string) string {
	s = unidecode.Unidecode(s)
	return strings.Join(strings.Fields(s), " ")
}

// Match is the best gazetteer candidate for a query.
type Match struct {
	Query string         `json:"query"`
	Name  string         `json:"name"`
	Geo   model.GeoPoint `json:"geo"`
	Score int            `json:"score"`
}

// Locator matches station strings to gazetteer keys.
type Locator struct {
	gaz      *gazetteer.Gazetteer
	scorer   Scorer
	minScore int
	log      zerolog.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithScorer replaces the similarity function.
func WithScorer(s Scorer) Option {
	return func(l *Locator) { l.scorer = s }
}

// WithMinScore sets the acceptance threshold.
func WithMinScore(n int) Option {
	return func(l *Locator) { l.minScore = n }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Locator) { l.log = log }
}

// New returns a Locator over g.
func New(g *gazetteer.Gazetteer, opts ...Option) *Locator {
	l := &Locator{
		gaz:      g,
		scorer:   WeightedScorer,
		minScore: DefaultMinScore,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MinScore returns the acceptance threshold.
func (l *Locator) MinScore() int {
	return l.minScore
}

// Best scores query against every gazetteer key and returns the top candidate.
// Keys are visited in sorted order and only a strictly higher score replaces the
// current best, so ties resolve to the lexicographically first key.
func (l *Locator) Best(query string) (Match, bool) {
	q := html.UnescapeString(query)
	best := Match{Query: q, Score: -1}
	for _, name := range l.gaz.Names() {
		if s := l.scorer(q, name); s > best.Score {
			best.Name, best.Score = name, s
		}
	}
	if best.Score < 0 {
		return Match{Query: q}, false
	}
	best.Geo, _ = l.gaz.Lookup(best.Name)
	return best, true
}

// Locate returns the best candidate and whether it clears the threshold.
// The candidate is returned on a miss as well so callers can report its score.
func (l *Locator) Locate(query string) (Match, bool) {
	m, found := l.Best(query)
	if !found {
		l.log.Debug().Str("query", m.Query).Msg("gazetteer is empty")
		return m, false
	}
	ok := m.Score >= l.minScore
	l.log.Debug().
		Str("query", m.Query).
		Str("match", m.Name).
		Int("score", m.Score).
		Bool("accepted", ok).
		Msg("station lookup")
	return m, ok
}
