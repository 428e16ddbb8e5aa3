package entryform

import (
	"fmt"
	"strings"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
)

// Lang language of a printed entry form.
type Lang string

const (
	LangEN Lang = "en"
	LangFR Lang = "fr"
	LangDE Lang = "de"
)

// ParseLang defaults to English on an empty value.
func ParseLang(s string) (Lang, error) {
	switch l := Lang(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LangEN, nil
	case LangEN, LangFR, LangDE:
		return l, nil
	}
	return "", apperr.Field("lang", "must be one of en, fr, de")
}

// Labels 表单上的固定文案
type Labels struct {
	Title      string
	Event      string
	Place      string
	Dates      string
	Codex      string
	Discipline string
	Category   string
	Date       string
	FisCode    string
	Name       string
	Nation     string
	Born       string
	Club       string
	Coaches    string
	Team       string
	From       string
	To         string
	Men        string
	Women      string
	Nobody     string
	Generated  string
}

var labels = map[Lang]Labels{
	LangEN: {
		Title: "Entry form", Event: "Event", Place: "Place", Dates: "Dates",
		Codex: "Codex", Discipline: "Discipline", Category: "Category", Date: "Date",
		FisCode: "FIS code", Name: "Name", Nation: "Nation", Born: "Born", Club: "Club",
		Coaches: "Coaches and staff", Team: "Team", From: "From", To: "To",
		Men: "Men", Women: "Women", Nobody: "No competitor entered", Generated: "Generated on",
	},
	LangFR: {
		Title: "Formulaire d'inscription", Event: "Événement", Place: "Lieu", Dates: "Dates",
		Codex: "Codex", Discipline: "Discipline", Category: "Catégorie", Date: "Date",
		FisCode: "Code FIS", Name: "Nom", Nation: "Nation", Born: "Né(e)", Club: "Club",
		Coaches: "Entraîneurs et encadrement", Team: "Équipe", From: "Du", To: "Au",
		Men: "Hommes", Women: "Dames", Nobody: "Aucun coureur inscrit", Generated: "Généré le",
	},
	LangDE: {
		Title: "Meldeformular", Event: "Veranstaltung", Place: "Ort", Dates: "Daten",
		Codex: "Codex", Discipline: "Disziplin", Category: "Kategorie", Date: "Datum",
		FisCode: "FIS-Code", Name: "Name", Nation: "Nation", Born: "Jahrgang", Club: "Verein",
		Coaches: "Trainer und Betreuer", Team: "Team", From: "Von", To: "Bis",
		Men: "Herren", Women: "Damen", Nobody: "Keine Athleten gemeldet", Generated: "Erstellt am",
	},
}

// LabelsFor returns the labels of l, English when l is unknown.
func LabelsFor(l Lang) Labels {
	if lb, ok := labels[l]; ok {
		return lb
	}
	return labels[LangEN]
}

func (lb Labels) gender(g string) string {
	if g == "W" {
		return lb.Women
	}
	return lb.Men
}

// Subject email subject of a rendered form.
func Subject(f *Form) string {
	return fmt.Sprintf("%s - %s %s (%s) - %s", f.Labels.Title, f.Event.Place, f.Event.StartDate, f.GenderLabel, f.Event.PlaceNationCode)
}
