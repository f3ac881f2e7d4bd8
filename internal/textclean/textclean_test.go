package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"simple name", []string{"john smith"}, []string{"john", "smith"}},
		{"strips punctuation and digits", []string{"(smith), j.r.r. 2nd"}, []string{"smith", "nd"}},
		{"drops single letters", []string{"j smith"}, []string{"smith"}},
		{"strips version suffix", []string{"web2.0 graphs"}, []string{"web", "graphs"}},
		{"drops mixed tokens", []string{"h2o levels"}, []string{"levels"}},
		{"drops stop words", []string{"on the theory of everything"}, []string{"theory", "everything"}},
		{"keeps unicode letters", []string{"józef müller"}, []string{"józef", "müller"}},
		{"drops french function words", []string{"analyse de la structure et des réseaux"}, []string{"analyse", "structure", "réseaux"}},
		{"drops german function words", []string{"über die theorie der graphen und netze"}, []string{"theorie", "graphen", "netze"}},
		{"drops spanish function words", []string{"estudio de los algoritmos para grafos"}, []string{"estudio", "algoritmos", "grafos"}},
		{"several texts", []string{"data mining", "mining graphs"}, []string{"data", "mining", "mining", "graphs"}},
		{"empty", nil, nil},
		{"only noise", []string{"  -- 42 !!"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.input...))
		})
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"keeps alphanumerics", []string{"mp3 encoding, h264"}, []string{"mp3", "encoding", "h264"}},
		{"drops short words", []string{"ai ml nlp"}, []string{"nlp"}},
		{"drops boilerplate", []string{"keywords: clustering; keyword ranking"}, []string{"clustering", "ranking"}},
		{"drops inner punctuation", []string{"co-authorship networks"}, []string{"networks"}},
		{"keeps digits only tokens", []string{"2013 challenge"}, []string{"2013", "challenge"}},
		{"empty", []string{""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.input...))
		})
	}
}

func TestIsStopWord(t *testing.T) {
	for _, w := range []string{"the", "and", "keywords", "key words", "wouldn't"} {
		assert.True(t, IsStopWord(w), w)
	}
	for _, w := range []string{"graph", "The", "", "# publication boilerplate"} {
		assert.False(t, IsStopWord(w), w)
	}
}

func TestIsStopWord_AllLanguages(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"dutch", "english", "french", "german", "italian", "portuguese", "spanish"},
		StopWordLanguages())

	for _, w := range []string{"de", "la", "et", "und", "der", "los", "della", "não", "het"} {
		assert.True(t, IsStopWord(w), w)
	}
}

func TestLowerer(t *testing.T) {
	l := NewLowerer()

	assert.Equal(t, "john smith", l.Lower("John SMITH"))
	assert.Equal(t, "straße", l.Lower("STRAßE"))
	assert.Equal(t, "école", l.Lower("École"))
}
