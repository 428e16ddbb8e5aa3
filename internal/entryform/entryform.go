// Package entryform renders the printable entry form of an inscription.
package entryform

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.New("entryform").Funcs(template.FuncMap{
	"day":     func(t time.Time) string { return t.Format("02.01.2006") },
	"inc":     func(i int) int { return i + 1 },
	"mark":    mark,
	"stamped": func(t time.Time) string { return t.Format("02.01.2006 15:04 MST") },
}).ParseFS(templateFS, "templates/*.html"))

// Form view model of one entry form: one gender, one language.
type Form struct {
	InscriptionID uint64
	EventID       uint64
	Lang          Lang
	Gender        string
	GenderLabel   string
	Labels        Labels
	Event         model.EventData
	Competitions  []model.Competition
	Entries       []Entry
	Coaches       []model.InscriptionCoach
	GeneratedAt   time.Time
}

// Entry one competitor row; Marks is aligned with Form.Competitions.
type Entry struct {
	Competitor model.Competitor
	Marks      []bool
	BirthYear  string
}

// Registration the input of NewForm for one competitor.
type Registration struct {
	Competitor model.Competitor
	Codices    []string
}

// NewForm assembles the view model. Competitions and coaches are narrowed to gender.
func NewForm(ins *model.Inscription, event *model.EventData, gender string, lang Lang, regs []Registration, coaches []model.InscriptionCoach, now time.Time) *Form {
	lb := LabelsFor(lang)
	f := &Form{
		InscriptionID: ins.ID,
		EventID:       ins.EventID,
		Lang:          lang,
		Gender:        gender,
		GenderLabel:   lb.gender(gender),
		Labels:        lb,
		Event:         *event,
		Competitions:  event.CompetitionsFor(gender),
		GeneratedAt:   now,
	}

	for _, r := range regs {
		if r.Competitor.Gender != "" && r.Competitor.Gender != gender {
			continue
		}
		held := make(map[string]bool, len(r.Codices))
		for _, c := range r.Codices {
			held[c] = true
		}
		e := Entry{Competitor: r.Competitor, Marks: make([]bool, len(f.Competitions))}
		entered := false
		for i, comp := range f.Competitions {
			e.Marks[i] = held[comp.Codex]
			entered = entered || e.Marks[i]
		}
		if !entered {
			continue
		}
		if r.Competitor.Birthdate != nil {
			e.BirthYear = r.Competitor.Birthdate.Format("2006")
		}
		f.Entries = append(f.Entries, e)
	}

	for _, c := range coaches {
		if c.Covers(gender) {
			f.Coaches = append(f.Coaches, c)
		}
	}
	return f
}

// Render writes the HTML document.
func Render(w io.Writer, f *Form) error {
	if err := tmpl.ExecuteTemplate(w, "form.html", f); err != nil {
		return fmt.Errorf("render entry form: %w", err)
	}
	return nil
}

// RenderString is Render into a string, for email bodies.
func RenderString(f *Form) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, f); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func mark(entered bool) string {
	if entered {
		return "X"
	}
	return ""
}
