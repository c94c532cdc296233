package latex_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-sorts/providers/latex"
)

const overview = `\documentclass{article}
\begin{document}
\section{Graphs} % Abschnitt
\begin{itemize}
  \item \cite{lee2020}: \emph{Fast} Graph Sorting:
  A new bound for sorting on graphs~--~with proofs.

  \item Topological Orders \cite{chen2019}
  Surveys \textbf{\textit{linear}} extensions.
  \item \cite{dangling}: Never Described
  \item Plain item without citation
  Text that belongs to no entry.
\end{itemize}
\end{document}
`

func TestParse(t *testing.T) {
	items, err := latex.Parse(strings.NewReader(overview))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, latex.Item{
		Key:         "lee2020",
		Title:       "Fast Graph Sorting",
		Description: "A new bound for sorting on graphs – with proofs.",
	}, items[0])
	assert.Equal(t, latex.Item{
		Key:         "chen2019",
		Title:       "Topological Orders",
		Description: "Surveys linear extensions.",
	}, items[1])
}

func TestParse_CiteVariants(t *testing.T) {
	items, err := latex.Parse(strings.NewReader(`\item \citep[p.~3]{a, b}: Multi Key
Desc.
`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Key)
	assert.Equal(t, "Multi Key", items[0].Title)
}

func TestToText(t *testing.T) {
	tests := map[string]string{
		`\textbf{Bold} and \emph{em}`:   "Bold and em",
		`R\&D costs 5\% more`:            "R&D costs 5% more",
		`pages 1--5 ---  done`:           "pages 1–5 — done",
		`{Nested {Braces}}`:              "Nested Braces",
		`\LaTeX{} \cite{x} remains`:      "remains",
		"  spaced   out  ":               "spaced out",
	}
	for in, want := range tests {
		assert.Equal(t, want, latex.ToText(in), in)
	}
}
