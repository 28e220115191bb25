package sentiment

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// defaultTopics maps the seven fixed topics to their keyword sets. Keywords
// are matched as substrings of the Turkish-lowercased review text.
var defaultTopics = map[string][]string{
	"food_quality": {"lezzetli", "güzel", "harika", "mükemmel", "berbat", "kötü", "yemek"},
	"service":      {"servis", "hizmet", "garson", "personel", "çalışan", "güler yüzlü"},
	"atmosphere":   {"ortam", "atmosfer", "müzik", "dekor", "ambiyans", "rahat"},
	"price":        {"fiyat", "pahalı", "ucuz", "uygun", "ekonomik", "değer"},
	"location":     {"konum", "yer", "ulaşım", "park", "merkez", "yakın"},
	"cleanliness":  {"temiz", "hijyen", "pis", "kirli", "bakımlı"},
	"speed":        {"hızlı", "yavaş", "geç", "çabuk", "bekletme", "süre"},
}

// TopicTagger assigns topic tags by keyword membership. A review contributes
// at most one tag per topic, even with multiple keyword hits.
type TopicTagger struct {
	topics map[string][]string
	lower  cases.Caser
}

// NewTopicTagger creates a tagger with the built-in topic lexicon.
func NewTopicTagger() *TopicTagger {
	return &TopicTagger{
		topics: defaultTopics,
		lower:  cases.Lower(language.Turkish),
	}
}

// LoadTopicTagger reads a YAML topic->keywords mapping that replaces the
// built-in lexicon. An empty path returns the default tagger.
func LoadTopicTagger(path string) (*TopicTagger, error) {
	if path == "" {
		return NewTopicTagger(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sentiment: read topics file %s", path)
	}
	topics := make(map[string][]string)
	if err := yaml.Unmarshal(data, &topics); err != nil {
		return nil, eris.Wrapf(err, "sentiment: parse topics file %s", path)
	}
	if len(topics) == 0 {
		return nil, eris.Errorf("sentiment: topics file %s is empty", path)
	}
	return &TopicTagger{topics: topics, lower: cases.Lower(language.Turkish)}, nil
}

// Tag returns the topics whose keyword sets match the text.
func (t *TopicTagger) Tag(text string) []string {
	lowered := t.lower.String(text)

	var tags []string
	for topic, keywords := range t.topics {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lowered, kw) {
				tags = append(tags, topic)
				break // one tag per topic per review
			}
		}
	}
	return tags
}
