// Package latex liest eine Literaturübersicht im LaTeX-Format.
//
// Erwartet werden Aufzählungspunkte der Form
//
//	\item \cite{key}: Titel des Papers
//	Ein Satz, der das Paper zusammenfasst.
//
// oder "\item Titel \cite{key}", gefolgt von der Beschreibung in der nächsten Zeile.
package latex

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// Item ist ein Eintrag der Literaturübersicht.
type Item struct {
	Key         string
	Title       string
	Description string
}

var (
	citeRe       = regexp.MustCompile(`\\cite[tp]?\*?(?:\[[^\]]*\])?\{([^}]*)\}`)
	formatRe     = regexp.MustCompile(`\\(?:textbf|textit|emph|texttt|textsc|underline|mbox|text)\{([^{}]*)\}`)
	commandRe    = regexp.MustCompile(`\\[a-zA-Z]+\*?`)
	structuralRe = regexp.MustCompile(`^\\(?:begin|end|section|subsection|subsubsection|chapter|paragraph|documentclass|usepackage|label|maketitle|title|author|date|bibliography|bibliographystyle)\b`)
)

// Parse liest r zeilenweise. Ein Eintrag entsteht erst, wenn auf die \item-Zeile eine Beschreibung folgt.
func Parse(r io.Reader) ([]Item, error) {
	var (
		items   []Item
		pending *Item
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(stripComment(scanner.Text()))
		if line == "" {
			continue
		}
		if strings.Contains(line, `\item`) {
			pending = nil
			if item, ok := parseItem(line); ok {
				pending = &item
			}
			continue
		}
		if structuralRe.MatchString(line) {
			continue
		}
		if pending != nil {
			if desc := ToText(line); desc != "" {
				pending.Description = desc
				items = append(items, *pending)
				pending = nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func parseItem(line string) (Item, bool) {
	loc := citeRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return Item{}, false
	}
	key := strings.TrimSpace(line[loc[2]:loc[3]])
	if i := strings.Index(key, ","); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}

	after := strings.TrimSpace(line[loc[1]:])
	after = strings.TrimSpace(strings.Trim(after, ":"))
	title := ToText(after)
	if title == "" {
		before := line[:loc[0]]
		if i := strings.Index(before, `\item`); i >= 0 {
			before = before[i+len(`\item`):]
		}
		title = strings.TrimSpace(strings.TrimRight(ToText(before), ":"))
	}
	if title == "" {
		return Item{}, false
	}
	return Item{Key: key, Title: title}, true
}

func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '%' && (i == 0 || line[i-1] != '\\') {
			return line[:i]
		}
	}
	return line
}

var replacer = strings.NewReplacer(
	`\&`, "&",
	`\%`, "%",
	`\_`, "_",
	`\#`, "#",
	`\$`, "$",
	"---", "—",
	"--", "–",
	"``", "\"",
	"''", "\"",
	`\\`, " ",
	"~", " ",
)

// ToText reduziert LaTeX-Markup auf lesbaren Text.
func ToText(s string) string {
	for {
		next := formatRe.ReplaceAllString(s, "$1")
		if next == s {
			break
		}
		s = next
	}
	s = citeRe.ReplaceAllString(s, "")
	s = replacer.Replace(s)
	s = commandRe.ReplaceAllString(s, "")
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
