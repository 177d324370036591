package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/qs3c/dict_go_server/config"
)

// Sender 发送一封已构建好的邮件
type Sender interface {
	Send(m *gomail.Message) error
}

type dialerSender struct {
	dialer *gomail.Dialer
}

func (d *dialerSender) Send(m *gomail.Message) error {
	return d.dialer.DialAndSend(m)
}

type Service struct {
	cfg     *config.EmailConfig
	siteURL string
	sender  Sender
}

func NewService(cfg *config.EmailConfig, siteURL string) *Service {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	return &Service{cfg: cfg, siteURL: siteURL, sender: &dialerSender{dialer: dialer}}
}

// NewServiceWithSender 使用自定义发送器（测试用）
func NewServiceWithSender(cfg *config.EmailConfig, siteURL string, sender Sender) *Service {
	return &Service{cfg: cfg, siteURL: siteURL, sender: sender}
}

// ConfirmLink 验证链接
func (s *Service) ConfirmLink(token string) string {
	return fmt.Sprintf("%s/confirm-email/%s/", s.siteURL, token)
}

// SendRegistrationConfirm 发送注册验证邮件
func (s *Service) SendRegistrationConfirm(to, nick, token string) error {
	link := s.ConfirmLink(token)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">邮箱验证</h2>
        <p>%s，您好：</p>
        <p>感谢注册，请点击下方链接完成邮箱验证：</p>
        <p style="background-color: #f3f4f6; padding: 10px; word-break: break-all;"><a href="%s">%s</a></p>
        <p>链接 24 小时内有效。如果您没有进行此操作，请忽略此邮件。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, nick, link, link)

	return s.sendHTML(to, "邮箱验证", body)
}

// SendEmailChangeConfirm 发送修改邮箱确认邮件，收件人为新邮箱
func (s *Service) SendEmailChangeConfirm(to, nick, token string) error {
	link := s.ConfirmLink(token)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">确认新邮箱</h2>
        <p>%s，您好：</p>
        <p>您申请将账号邮箱修改为本地址，请点击下方链接确认：</p>
        <p style="background-color: #f3f4f6; padding: 10px; word-break: break-all;"><a href="%s">%s</a></p>
        <p>链接 24 小时内有效。如果您没有进行此操作，请忽略此邮件。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, nick, link, link)

	return s.sendHTML(to, "确认新邮箱", body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return s.sender.Send(m)
}
