package llmintent

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed examples.yaml
var embeddedCorpus []byte

// corpusFile is the YAML shape of the example corpus.
type corpusFile struct {
	Examples []corpusGroup `yaml:"examples"`
}

// corpusGroup is a set of utterances sharing one intent label and language.
type corpusGroup struct {
	Intent   string   `yaml:"intent"`
	Language string   `yaml:"language"`
	Texts    []string `yaml:"texts"`
}

var (
	corpusOnce   sync.Once
	corpusGroups []corpusGroup
)

// defaultCorpus returns the embedded example corpus. It panics if the
// embedded data is malformed, which can only happen from a bad build.
func defaultCorpus() []corpusGroup {
	corpusOnce.Do(func() {
		groups, err := parseCorpus(bytes.NewReader(embeddedCorpus))
		if err != nil {
			panic(fmt.Sprintf("llmintent: embedded examples.yaml is invalid: %v", err))
		}
		corpusGroups = groups
	})
	return corpusGroups
}

// parseCorpus decodes and validates a corpus document.
func parseCorpus(r io.Reader) ([]corpusGroup, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f corpusFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	if len(f.Examples) == 0 {
		return nil, fmt.Errorf("corpus contains no examples")
	}
	for i, g := range f.Examples {
		if g.Intent == "" {
			return nil, fmt.Errorf("corpus group %d has no intent", i)
		}
		if len(g.Texts) == 0 {
			return nil, fmt.Errorf("corpus group %d (%s) has no texts", i, g.Intent)
		}
	}
	return f.Examples, nil
}
