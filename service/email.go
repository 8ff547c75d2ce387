package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"ledger/config"
	"ledger/models"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled 邮件服务未启用
var ErrEmailDisabled = errors.New("邮件服务未启用，请配置 LEDGER_EMAIL_ENABLED=true")

// EmailService 邮件服务
type EmailService struct {
	cfg      *config.EmailConfig
	currency string
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig, currency string) *EmailService {
	return &EmailService{cfg: cfg, currency: currency}
}

// SendInstallmentReminder 发送贷款月供到期/逾期提醒；没有提醒时不发送
func (s *EmailService) SendInstallmentReminder(to string, alerts *InstallmentAlerts) (bool, error) {
	if !s.cfg.Enabled {
		return false, ErrEmailDisabled
	}
	if to == "" {
		to = s.cfg.NotifyTo
	}
	if to == "" {
		return false, fmt.Errorf("未配置提醒收件人 email.notify_to")
	}
	if alerts == nil || alerts.Empty() {
		return false, nil
	}

	subject := fmt.Sprintf("【账本】贷款月供提醒：%d 笔即将到期，%d 笔已逾期", len(alerts.Upcoming), len(alerts.Overdue))
	if err := s.sendEmail(to, subject, s.generateReminderBody(alerts)); err != nil {
		return false, err
	}
	return true, nil
}

// generateReminderBody 生成提醒邮件内容
func (s *EmailService) generateReminderBody(alerts *InstallmentAlerts) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 640px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 24px; text-align: center; }
        .content { padding: 24px 30px; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { padding: 8px; border-bottom: 1px solid #eee; text-align: left; }
        .overdue { color: #b91c1c; }
        .footer { background: #f8f9fa; padding: 16px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>贷款月供提醒</h1></div>
        <div class="content">
`)
	s.writeSection(&b, "已逾期", "overdue", alerts.Overdue)
	s.writeSection(&b, "即将到期", "upcoming", alerts.Upcoming)
	b.WriteString(`        </div>
        <div class="footer"><p>此邮件由系统自动发送，请勿回复</p></div>
    </div>
</body>
</html>
`)
	return b.String()
}

func (s *EmailService) writeSection(b *strings.Builder, title, class string, list []models.LoanInstallment) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(b, "            <h3 class=\"%s\">%s（%d）</h3>\n", class, title, len(list))
	b.WriteString("            <table><tr><th>银行</th><th>到期日</th><th>金额</th></tr>\n")
	for _, i := range list {
		bank := ""
		if i.Loan != nil {
			bank = i.Loan.BankName
		}
		fmt.Fprintf(b, "            <tr class=\"%s\"><td>%s</td><td>%s</td><td>%s %s</td></tr>\n",
			class, html.EscapeString(bank), i.DueDate.Format(models.DateLayout),
			i.TotalInstallmentAmount.StringFixed(2), html.EscapeString(s.currency))
	}
	b.WriteString("            </table>\n")
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

// SendTestEmail 发送测试邮件
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.cfg.Enabled {
		return ErrEmailDisabled
	}

	subject := "【账本】邮件配置测试"
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>邮件配置成功</h2>
    <p>如果您收到这封邮件，说明提醒邮件配置正确。</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}
