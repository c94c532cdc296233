// Package interaction implementiert den interaktiven Dialog auf der Kommandozeile.
package interaction

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"paper-sorts/models"
	"paper-sorts/services"
	"paper-sorts/storage"
)

// Connector ist der Teil von services.Connector, den der Dialog braucht.
type Connector interface {
	SearchByTitle(ctx context.Context, title string) ([]models.PaperRecord, error)
	SearchByAuthor(ctx context.Context, author string) ([]models.AuthorHit, error)
	PaperByID(ctx context.Context, paperID uint) (models.PaperRecord, error)
	BibEntry(ctx context.Context, bibtexID string) (models.BibEntry, error)
	AddPaper(ctx context.Context, p services.NewPaper) (uint, error)
	KeyExists(ctx context.Context, bibtexID string) (bool, error)
	UpdateEntry(ctx context.Context, column, value, table, identifier string) error
}

// Session führt einen Benutzer durch Suchen, Hinzufügen und Ändern.
type Session struct {
	conn Connector
	in   *bufio.Reader
	out  io.Writer
	log  *zap.Logger
}

func NewSession(conn Connector, in io.Reader, out io.Writer, logger *zap.Logger) *Session {
	return &Session{
		conn: conn,
		in:   bufio.NewReader(in),
		out:  out,
		log:  logger.With(zap.String("component", "interaction")),
	}
}

const menu = `What do you want to do?
1) Search the database
2) Add an entry
3) Update an entry
4) (Q)uit
Your choice: `

// Run läuft bis zur Auswahl "4"/"q" oder bis die Eingabe endet.
// Ein Speicherfehler beendet die Sitzung und wird zurückgegeben.
func (s *Session) Run(ctx context.Context) error {
	for {
		choice, err := s.ask(menu)
		if err != nil {
			return s.finish(err)
		}

		switch strings.ToLower(choice) {
		case "1":
			err = s.search(ctx)
		case "2":
			err = s.add(ctx)
		case "3":
			err = s.update(ctx)
		case "4", "q":
			s.printf("Closing connection...\n")
			return nil
		default:
			s.printf("Your input was invalid\n")
			continue
		}
		if err = s.report(err); err != nil {
			return s.finish(err)
		}
	}
}

// report gibt fachliche Fehler aus und lässt nur EOF und Speicherfehler durch.
func (s *Session) report(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), storage.IsStorageError(err):
		return err
	case errors.Is(err, services.ErrNotFound):
		s.printf("Nothing found: %v\n", err)
	case errors.Is(err, services.ErrDuplicateKey), errors.Is(err, services.ErrDuplicateValue):
		s.printf("Entry already exists: %v\n", err)
	case errors.Is(err, services.ErrInvalidColumn):
		s.printf("This information cannot be updated: %v\n", err)
	default:
		s.printf("Operation failed: %v\n", err)
	}
	s.log.Info("Aktion fehlgeschlagen", zap.Error(err))
	return nil
}

func (s *Session) finish(err error) error {
	if errors.Is(err, io.EOF) {
		s.log.Debug("Eingabe beendet")
		return nil
	}
	s.printf("There was a database error, shutting down.\n")
	s.log.Error("Sitzung wegen Datenbankfehler beendet", zap.Error(err))
	return err
}

func (s *Session) search(ctx context.Context) error {
	var method int
	prompt := "Search interface\nPlease choose a method:\n1) Search by author\n2) Search by title\n"
	for method != 1 && method != 2 {
		answer, err := s.ask(prompt)
		if err != nil {
			return err
		}
		method, _ = strconv.Atoi(answer)
		prompt = "Please choose a valid option:\n1) Search by author\n2) Search by title\n"
	}

	var rec models.PaperRecord
	if method == 2 {
		title, err := s.ask("Please enter the paper title: ")
		if err != nil {
			return err
		}
		records, err := s.conn.SearchByTitle(ctx, title)
		if err != nil {
			return err
		}
		rec = records[0]
		if len(records) > 1 {
			titles := make([]string, len(records))
			for i, r := range records {
				titles[i] = fmt.Sprintf("%s (%s)", r.Title, r.Authors)
			}
			i, err := s.choose(titles)
			if err != nil {
				return err
			}
			rec = records[i]
		}
	} else {
		author, err := s.ask("Please enter the author's name: ")
		if err != nil {
			return err
		}
		hits, err := s.conn.SearchByAuthor(ctx, author)
		if err != nil {
			return err
		}
		titles := make([]string, len(hits))
		for i, h := range hits {
			titles[i] = h.Title
		}
		i, err := s.choose(titles)
		if err != nil {
			return err
		}
		if rec, err = s.conn.PaperByID(ctx, hits[i].PaperID); err != nil {
			return err
		}
	}

	bib, err := s.conn.BibEntry(ctx, rec.BibtexID)
	if err != nil {
		return err
	}
	s.printf("%s", services.FormatRecord(rec, bib))
	return nil
}

func (s *Session) add(ctx context.Context) error {
	authors, err := s.ask("Please enter the necessary information\nAuthor(s), please provide a , separated list: ")
	if err != nil {
		return err
	}
	title, err := s.ask("Paper title: ")
	if err != nil {
		return err
	}
	key, err := s.ask("bibtex key: ")
	if err != nil {
		return err
	}
	exists, err := s.conn.KeyExists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", services.ErrDuplicateKey, key)
	}
	form, err := s.ask("Do you want to enter the bibtex entry via a separate file?\n1) Yes\n2) No\nYour choice: ")
	if err != nil {
		return err
	}

	var entry string
	if form == "1" {
		path, err := s.ask("Enter filename: ")
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read bib file: %w", err)
		}
		entry = string(data)
	} else {
		if entry, err = s.ask("bib entry: "); err != nil {
			return err
		}
	}
	summary, err := s.ask("summary of the paper: ")
	if err != nil {
		return err
	}

	id, err := s.conn.AddPaper(ctx, services.NewPaper{
		BibtexID: key,
		Bibtex:   entry,
		Title:    title,
		Contents: summary,
		Authors:  services.SplitAuthors(authors),
	})
	if err != nil {
		return err
	}
	s.printf("Added %q with id %d\n", title, id)
	return nil
}

func (s *Session) update(ctx context.Context) error {
	answer, err := s.ask("Which information do you want to update?\n1) papers\n2) bib\n3) authors\n4) abort\nYour choice: ")
	if err != nil {
		return err
	}

	var table, column string
	switch strings.ToLower(answer) {
	case "1", "papers":
		table = "papers"
		answer, err := s.ask("Which information do you want to update?\n1) title\n2) contents\n3) abort\nYour choice: ")
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "1", "title":
			column = "title"
		case "2", "contents":
			column = "contents"
		case "3", "abort":
			s.printf("Stopping update process...\n")
			return nil
		default:
			s.printf("Column %q cannot be updated in this manner.\n", answer)
			return nil
		}
	case "2", "bib":
		s.printf("Only the bibtex entry can be updated - the bibtex identifier cannot be changed.\n")
		table, column = "bib", "bibtex"
	case "3", "authors":
		s.printf("Only an author name can be updated.\n")
		table, column = "authors_id", "author"
	case "4", "abort":
		s.printf("Stopping update process...\n")
		return nil
	default:
		s.printf("Table %q cannot be updated in this manner.\n", answer)
		return nil
	}

	identifier, err := s.ask("Which entry do you want to update?\nPlease enter the respective id: ")
	if err != nil {
		return err
	}
	value, err := s.ask("Enter the new information: ")
	if err != nil {
		return err
	}
	confirm, err := s.ask(fmt.Sprintf("Please verify: You wish to change '%s' of the entry '%s' to '%s'.\nProceed?\n1) (Y)es\n2) (N)o\nYour choice: ",
		column, identifier, value))
	if err != nil {
		return err
	}
	switch strings.ToLower(confirm) {
	case "1", "y", "yes":
	case "2", "n", "no":
		s.printf("Stopping update process...\n")
		return nil
	default:
		s.printf("Could not parse your reply. Stopping update process...\n")
		return nil
	}

	if err := s.conn.UpdateEntry(ctx, column, value, table, identifier); err != nil {
		return err
	}
	s.printf("Entry updated.\n")
	return nil
}

// choose listet options und liefert den gewählten Index.
func (s *Session) choose(options []string) (int, error) {
	if len(options) == 1 {
		return 0, nil
	}
	s.printf("Following papers found:\n")
	for i, o := range options {
		s.printf("%d: %s\n", i+1, o)
	}
	for {
		answer, err := s.ask("Choose paper: ")
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		s.printf("Please choose a valid number.\n")
	}
}

// ask fragt so lange, bis eine nicht-leere Antwort kommt.
func (s *Session) ask(prompt string) (string, error) {
	for {
		s.printf("%s", prompt)
		line, err := s.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer != "" {
			return answer, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
