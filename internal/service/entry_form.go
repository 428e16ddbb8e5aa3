package service

import (
	"context"
	"strings"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/entryform"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/interfaces"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"

	"github.com/sirupsen/logrus"
)

// EntryFormService 生成并发送报名表（打印版 HTML）
type EntryFormService struct {
	inscriptions  repository.InscriptionRepository
	registrations repository.RegistrationRepository
	coaches       repository.CoachRepository
	mailer        interfaces.Mailer
	email         config.EmailConfig
	logger        *logrus.Logger
	now           func() time.Time
}

func NewEntryFormService(
	inscriptions repository.InscriptionRepository,
	registrations repository.RegistrationRepository,
	coaches repository.CoachRepository,
	mailer interfaces.Mailer,
	email config.EmailConfig,
	logger *logrus.Logger,
) *EntryFormService {
	return &EntryFormService{
		inscriptions:  inscriptions,
		registrations: registrations,
		coaches:       coaches,
		mailer:        mailer,
		email:         email,
		logger:        logger,
		now:           time.Now,
	}
}

// SendEntryFormInput body of POST /api/inscriptions/:id/entry-form/send.
// Empty To and CC fall back to the configured defaults.
type SendEntryFormInput struct {
	Gender string   `json:"gender"`
	Lang   string   `json:"lang"`
	To     []string `json:"to"`
	CC     []string `json:"cc"`
	From   string   `json:"from"`
}

// SendResult where the form went.
type SendResult struct {
	Subject string   `json:"subject"`
	To      []string `json:"to"`
	CC      []string `json:"cc"`
}

// Build assembles the form of one gender from live registrations and coaches only.
func (s *EntryFormService) Build(ctx context.Context, inscriptionID uint64, gender, lang string) (*entryform.Form, error) {
	gender = strings.ToUpper(strings.TrimSpace(gender))
	if gender != model.GenderMen && gender != model.GenderWomen {
		return nil, apperr.Field("gender", "must be M or W")
	}
	l, err := entryform.ParseLang(lang)
	if err != nil {
		return nil, err
	}

	ins, err := s.inscriptions.GetByID(ctx, inscriptionID)
	if err != nil {
		return nil, err
	}
	event, err := ins.Event()
	if err != nil {
		return nil, err
	}
	registered, err := s.registrations.ListByInscription(ctx, inscriptionID, "")
	if err != nil {
		return nil, err
	}
	coaches, err := s.coaches.ListByInscription(ctx, inscriptionID)
	if err != nil {
		return nil, err
	}

	regs := make([]entryform.Registration, 0, len(registered))
	for _, r := range registered {
		regs = append(regs, entryform.Registration{Competitor: r.Competitor, Codices: r.Codices})
	}
	return entryform.NewForm(ins, event, gender, l, regs, coaches, s.now().UTC()), nil
}

// Render returns the HTML document of the form.
func (s *EntryFormService) Render(ctx context.Context, inscriptionID uint64, gender, lang string) (string, error) {
	form, err := s.Build(ctx, inscriptionID, gender, lang)
	if err != nil {
		return "", err
	}
	return entryform.RenderString(form)
}

// Send 渲染后通过邮件服务发出，投递结果不跟踪
func (s *EntryFormService) Send(ctx context.Context, inscriptionID uint64, in SendEntryFormInput, actor string) (*SendResult, error) {
	to := cleanAddresses(in.To)
	if len(to) == 0 {
		to = cleanAddresses(s.email.DefaultRecipients)
	}
	if len(to) == 0 {
		return nil, apperr.Field("to", "no recipients given and none configured")
	}
	cc := cleanAddresses(in.CC)
	if len(cc) == 0 {
		cc = cleanAddresses(s.email.DefaultCC)
	}

	form, err := s.Build(ctx, inscriptionID, in.Gender, in.Lang)
	if err != nil {
		return nil, err
	}
	html, err := entryform.RenderString(form)
	if err != nil {
		return nil, err
	}

	subject := entryform.Subject(form)
	if err := s.mailer.Send(ctx, interfaces.Email{
		To:      to,
		CC:      cc,
		From:    strings.TrimSpace(in.From),
		Subject: subject,
		HTML:    html,
	}); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"inscription_id": inscriptionID,
		"gender":         form.Gender,
		"recipients":     len(to) + len(cc),
		"actor":          actor,
	}).Info("entry form sent")
	return &SendResult{Subject: subject, To: to, CC: cc}, nil
}

func cleanAddresses(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
