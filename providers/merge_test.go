package providers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paper-sorts/models"
	"paper-sorts/providers"
	"paper-sorts/providers/bibtex"
	"paper-sorts/providers/latex"
)

func TestMerge(t *testing.T) {
	items := []latex.Item{
		{Key: "a", Title: "Paper A", Description: "about A"},
		{Key: "missing", Title: "Paper M", Description: "about M"},
	}
	entries := []bibtex.Entry{
		{Key: "a", Authors: []string{"Lee, Ann"}, Text: "@misc{a}"},
		{Key: "unused", Text: "@misc{unused}"},
	}

	got := providers.Merge(items, entries)
	assert.Equal(t, map[string]models.LiteratureEntry{
		"Paper A": {BibtexID: "a", Authors: []string{"Lee, Ann"}, Bibtex: "@misc{a}", Contents: "about A"},
		"Paper M": {BibtexID: "missing", Contents: "about M"},
	}, got)
}
