package mail

import (
	"fmt"

	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Client is the slice of *mail.Client that Send needs; tests substitute
// their own implementation.
type Client interface {
	DialAndSend(msgs ...*mail.Msg) error
}

type Service struct {
	config *config.MailConfig
	client Client
	logger *logging.Service
}

// NewServiceWithClient wires a ready-made client, bypassing SMTP setup.
func NewServiceWithClient(cfg *config.MailConfig, logger *logging.Service, client Client) (*Service, error) {
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("MEDREC_MAIL_FROM_ADDRESS is required")
	}
	return &Service{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	if logger != nil {
		logger.Info("initializing mail service",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("encryption", cfg.Encryption),
			zap.String("from_address", cfg.FromAddress))
	}

	if cfg.FromAddress == "" {
		if logger != nil {
			logger.Error("mail service initialization failed: FROM_ADDRESS is required")
		}
		return nil, fmt.Errorf("MEDREC_MAIL_FROM_ADDRESS is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts, mail.WithSMTPAuth(mail.SMTPAuthPlain))
		clientOpts = append(clientOpts, mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	switch cfg.Encryption {
	case "tls", "starttls":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		if logger != nil {
			logger.Error("failed to create mail client",
				zap.Error(err),
				zap.String("host", cfg.Host),
				zap.Int("port", cfg.Port))
		}
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	if logger != nil {
		logger.Info("mail service initialized successfully")
	}

	return &Service{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

// Send delivers a transactional message with both HTML and plain text
// bodies. Callers build the bodies themselves.
func (s *Service) Send(toEmail, toName, subject, htmlBody, textBody string) error {
	msg := mail.NewMsg()

	if err := msg.FromFormat(s.config.FromName, s.config.FromAddress); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}

	if toName != "" {
		if err := msg.AddToFormat(toName, toEmail); err != nil {
			return fmt.Errorf("invalid recipient address: %w", err)
		}
	} else {
		if err := msg.AddTo(toEmail); err != nil {
			return fmt.Errorf("invalid recipient address: %w", err)
		}
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, textBody)
	if htmlBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)
	}

	if err := s.client.DialAndSend(msg); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send mail",
				zap.Error(err),
				zap.String("to", toEmail),
				zap.String("subject", subject))
		}
		return fmt.Errorf("failed to send mail: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("mail sent",
			zap.String("to", toEmail),
			zap.String("subject", subject))
	}

	return nil
}
