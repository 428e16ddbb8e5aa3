package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/identity"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/interfaces"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/metrics"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"

	"github.com/sirupsen/logrus"
)

//go:embed templates/recap.html
var recapFS embed.FS

var recapTmpl = template.Must(template.New("recap").Funcs(template.FuncMap{
	"clock": func(t time.Time) string { return t.Format("15:04") },
}).ParseFS(recapFS, "templates/recap.html"))

// RecapService 每日变更汇总：统计当天新增与软删除的记录并邮件通知
type RecapService struct {
	repo     repository.RecapRepository
	users    interfaces.UserDirectory
	mailer   interfaces.Mailer
	cfg      config.RecapConfig
	location *time.Location
	logger   *logrus.Logger
}

func NewRecapService(repo repository.RecapRepository, users interfaces.UserDirectory, mailer interfaces.Mailer, cfg config.RecapConfig, logger *logrus.Logger) (*RecapService, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("recap timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}
	return &RecapService{repo: repo, users: users, mailer: mailer, cfg: cfg, location: loc, logger: logger}, nil
}

// RecapSection changes of one table, actors resolved to display names.
type RecapSection struct {
	Table    string                `json:"table"`
	Label    string                `json:"label"`
	Inserted []repository.RecapRow `json:"inserted"`
	Deleted  []repository.RecapRow `json:"deleted"`
}

// RecapReport 一次汇总的结果
type RecapReport struct {
	Day      string         `json:"day"`
	From     time.Time      `json:"from"`
	To       time.Time      `json:"to"`
	Sections []RecapSection `json:"sections"`
	Total    int            `json:"total"`
	DryRun   bool           `json:"dryRun"`
	Sent     bool           `json:"sent"`
	HTML     string         `json:"-"`
}

// Location the timezone days are cut in.
func (s *RecapService) Location() *time.Location { return s.location }

// Run builds the recap of the calendar day containing day, in the configured timezone.
// Nothing is mailed when dryRun is set, when there are no changes, or without recipients.
func (s *RecapService) Run(ctx context.Context, day time.Time, dryRun bool) (*RecapReport, error) {
	local := day.In(s.location)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	return s.run(ctx, from, from.AddDate(0, 0, 1), dryRun)
}

// RunTrailing builds the recap of the day ending at now, for the daily scheduled job.
// now is cut to the minute so consecutive triggers share their boundary, and the
// start is the same wall clock time one day earlier.
func (s *RecapService) RunTrailing(ctx context.Context, now time.Time, dryRun bool) (*RecapReport, error) {
	to := now.In(s.location).Truncate(time.Minute)
	return s.run(ctx, to.AddDate(0, 0, -1), to, dryRun)
}

func (s *RecapService) run(ctx context.Context, from, to time.Time, dryRun bool) (*RecapReport, error) {
	changes, err := s.repo.Changes(ctx, from.UTC(), to.UTC())
	if err != nil {
		metrics.RecapRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	report := &RecapReport{
		Day:      to.Add(-time.Nanosecond).Format("2006-01-02"),
		From:     from,
		To:       to,
		Sections: make([]RecapSection, 0, len(changes)),
		DryRun:   dryRun,
	}
	names := make(map[string]string)
	resolve := func(rows []repository.RecapRow) []repository.RecapRow {
		for i := range rows {
			rows[i].ChangedAt = rows[i].ChangedAt.In(s.location)
			id := rows[i].Actor
			if id == "" {
				continue
			}
			name, ok := names[id]
			if !ok {
				name = identity.Resolve(ctx, s.users, s.logger, id)
				names[id] = name
			}
			rows[i].Actor = name
		}
		return rows
	}
	for _, c := range changes {
		report.Sections = append(report.Sections, RecapSection{
			Table:    c.Table.Name,
			Label:    c.Table.Label,
			Inserted: resolve(c.Inserted),
			Deleted:  resolve(c.Deleted),
		})
		report.Total += len(c.Inserted) + len(c.Deleted)
	}

	var buf bytes.Buffer
	if err := recapTmpl.ExecuteTemplate(&buf, "recap.html", report); err != nil {
		metrics.RecapRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("render recap: %w", err)
	}
	report.HTML = buf.String()

	log := s.logger.WithFields(logrus.Fields{"day": report.Day, "changes": report.Total, "dry_run": dryRun})
	switch {
	case dryRun:
		metrics.RecapRunsTotal.WithLabelValues("dry_run").Inc()
		log.Info("recap built (dry run)")
		return report, nil
	case report.Total == 0:
		metrics.RecapRunsTotal.WithLabelValues("empty").Inc()
		log.Info("recap skipped, no changes")
		return report, nil
	case len(cleanAddresses(s.cfg.Recipients)) == 0:
		metrics.RecapRunsTotal.WithLabelValues("no_recipients").Inc()
		log.Warn("recap skipped, no recipients configured")
		return report, nil
	}

	subject := strings.TrimSpace(s.cfg.Subject)
	if subject == "" {
		subject = "Daily inscriptions recap"
	}
	if err := s.mailer.Send(ctx, interfaces.Email{
		To:      cleanAddresses(s.cfg.Recipients),
		Subject: subject + " " + report.Day,
		HTML:    report.HTML,
	}); err != nil {
		metrics.RecapRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	report.Sent = true
	metrics.RecapRunsTotal.WithLabelValues("sent").Inc()
	log.Info("recap sent")
	return report, nil
}

// parseDay parses YYYY-MM-DD as midnight UTC.
func parseDay(field, s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.Field(field, "must be formatted YYYY-MM-DD")
	}
	return t, nil
}

// ParseRecapDay resolves the date of a manual recap run in loc. Empty means today.
func ParseRecapDay(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return now.In(loc), nil
	}
	t, err := parseDay("date", s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc), nil
}
