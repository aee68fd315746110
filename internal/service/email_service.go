package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/repository"

	"github.com/google/uuid"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg          *config.EmailConfig
	appName      string
	emailLogRepo repository.EmailLogRepository
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig, appName string, emailLogRepo repository.EmailLogRepository) *EmailService {
	return &EmailService{
		cfg:          cfg,
		appName:      appName,
		emailLogRepo: emailLogRepo,
	}
}

// SetConfig 更新运行时邮件配置
func (s *EmailService) SetConfig(cfg *config.EmailConfig) {
	if cfg == nil {
		return
	}
	s.cfg = cfg
}

// Dispatch 按模板名发送邮件并记录结果
// 返回投递消息 ID；发送失败同样落一条 failed 记录
func (s *EmailService) Dispatch(templateName, recipient string, params map[string]string) (string, error) {
	subject, htmlBody, textBody, err := renderEmailTemplate(templateName, s.appName, params)
	if err != nil {
		return "", err
	}

	messageID := uuid.NewString()
	sendErr := s.sendEmail(recipient, subject, htmlBody, textBody)

	record := &models.EmailLog{
		Template:  templateName,
		Recipient: recipient,
		Subject:   subject,
		MessageID: messageID,
		Status:    constants.EmailStatusSent,
	}
	if sendErr != nil {
		record.Status = constants.EmailStatusFailed
		record.Error = sendErr.Error()
	}
	if err := s.emailLogRepo.Create(record); err != nil {
		logger.Errorw("email_log_write_failed", "error", err, "template", templateName)
	}

	if sendErr != nil {
		logger.Errorw("email_send_failed",
			"template", templateName,
			"recipient", recipient,
			"error", sendErr,
		)
		return "", sendErr
	}

	logger.Infow("email_sent",
		"template", templateName,
		"recipient", recipient,
		"message_id", messageID,
	)
	return messageID, nil
}

// SendTest 发送 SMTP 配置测试邮件（诊断接口用）
func (s *EmailService) SendTest(recipient string) error {
	subject := fmt.Sprintf("%s SMTP 测试邮件", s.appName)
	htmlBody := "<p>这是一封 SMTP 配置测试邮件，收到说明当前配置可正常发送。</p>"
	textBody := "这是一封 SMTP 配置测试邮件，收到说明当前配置可正常发送。"
	return s.sendEmail(recipient, subject, htmlBody, textBody)
}

func (s *EmailService) sendEmail(toEmail, subject, htmlBody, textBody string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailNotConfigured
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidInput
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, htmlBody, textBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
	}
	if s.cfg.UseTLS {
		return sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
	}
	return sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

// buildEmailMessage 组装 MIME 消息
// 有纯文本备选时生成 multipart/alternative，文本在前 HTML 在后
func buildEmailMessage(from, to, subject, htmlBody, textBody string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if strings.TrimSpace(textBody) == "" {
		buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		buf.WriteString("\r\n")
		buf.WriteString(htmlBody)
		return buf.String()
	}

	boundary := "alt-" + uuid.NewString()
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary))
	buf.WriteString("\r\n")
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	buf.WriteString(textBody)
	buf.WriteString("\r\n")
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	buf.WriteString(htmlBody)
	buf.WriteString("\r\n")
	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
