package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/interviewhub/interviewhub-api/config"
	"github.com/interviewhub/interviewhub-api/internal/application"
	"github.com/interviewhub/interviewhub-api/pkg/helpers"
	"github.com/interviewhub/interviewhub-api/pkg/mailer"
	tpl "github.com/interviewhub/interviewhub-api/pkg/mailer/templates"
)

// RabbitNotifier enqueues email jobs on RabbitMQ; the mail worker renders
// and sends them. Links embed the token: verification links point at this
// API (the endpoint is browser-followed and redirects), reset links point
// at the client app's reset page.
type RabbitNotifier struct {
	Pub    *helpers.RabbitPublisher
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewRabbitNotifier(pub *helpers.RabbitPublisher, cfg *config.Config, logger *logrus.Logger) *RabbitNotifier {
	return &RabbitNotifier{Pub: pub, Cfg: cfg, Logger: logger}
}

func (n *RabbitNotifier) verifyLink(token string) string {
	return strings.TrimRight(n.Cfg.PublicBaseURL, "/") + "/verify-email/" + token
}

func (n *RabbitNotifier) resetLink(token string) string {
	base := n.Cfg.ClientBaseURL
	if base == "" {
		base = n.Cfg.PublicBaseURL
	}
	return strings.TrimRight(base, "/") + "/reset-password/" + token
}

func (n *RabbitNotifier) SendVerificationMail(ctx context.Context, to, token, displayName string, meta application.MailMeta) error {
	data := tpl.NewVerifyEmailData(
		n.Cfg,
		displayName,
		to,
		n.verifyLink(token),
		tpl.WithTime(time.Now()),
		tpl.WithExpiresIn(n.Cfg.VerifyTTL),
		tpl.WithIP(meta.IP),
		tpl.WithUserAgent(meta.UserAgent),
	)
	return n.publish(ctx, mailer.EmailJob{To: to, Template: tpl.VerifyEmail, Data: data})
}

func (n *RabbitNotifier) SendPasswordResetMail(ctx context.Context, to, token, displayName string, meta application.MailMeta) error {
	data := tpl.NewForgotPasswordData(
		n.Cfg,
		displayName,
		to,
		n.resetLink(token),
		tpl.WithTime(time.Now()),
		tpl.WithExpiresIn(n.Cfg.ResetTTL),
		tpl.WithIP(meta.IP),
		tpl.WithUserAgent(meta.UserAgent),
	)
	return n.publish(ctx, mailer.EmailJob{To: to, Template: tpl.ForgotPassword, Data: data})
}

func (n *RabbitNotifier) publish(ctx context.Context, job mailer.EmailJob) error {
	if n.Cfg != nil && !n.Cfg.MailSendEnabled {
		if n.Logger != nil {
			n.Logger.WithField("to", job.To).WithField("template", job.Template).Debug("mail sending disabled, dropping job")
		}
		return nil
	}
	if n.Pub == nil {
		return errors.New("mail queue unavailable")
	}
	return n.Pub.PublishJSON(ctx, job)
}

var _ application.Notifier = (*RabbitNotifier)(nil)
