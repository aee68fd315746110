package service

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/promolink-next/internal/constants"
)

// emailTemplate 固定邮件模板（主题 + HTML 正文 + 纯文本备选）
type emailTemplate struct {
	subject string
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

var emailTemplates = map[string]emailTemplate{
	constants.EmailTemplateWelcome: {
		subject: "欢迎加入 {{.app_name}}",
		html: htmltemplate.Must(htmltemplate.New(constants.EmailTemplateWelcome).Parse(`
<p>{{.name}}，您好：</p>
<p>欢迎加入 {{.app_name}} 推广计划。您的登录账号为 <strong>{{.username}}</strong>。</p>
{{if .password}}<p>初始密码：<strong>{{.password}}</strong>，请登录后尽快修改。</p>
{{end}}<p>账号审核通过后即可登录查看业绩与账单。</p>
<p>{{.app_name}} 团队</p>`)),
		text: texttemplate.Must(texttemplate.New(constants.EmailTemplateWelcome).Parse(`{{.name}}，您好：

欢迎加入 {{.app_name}} 推广计划。您的登录账号为 {{.username}}。
{{if .password}}初始密码：{{.password}}，请登录后尽快修改。
{{end}}账号审核通过后即可登录查看业绩与账单。

{{.app_name}} 团队`)),
	},
	constants.EmailTemplatePasswordReset: {
		subject: "重置您的 {{.app_name}} 密码",
		html: htmltemplate.Must(htmltemplate.New(constants.EmailTemplatePasswordReset).Parse(`
<p>{{.name}}，您好：</p>
<p>我们收到了您的密码重置请求。请点击下方链接设置新密码：</p>
<p><a href="{{.reset_url}}">{{.reset_url}}</a></p>
<p>链接 {{.expire_minutes}} 分钟内有效，且只能使用一次。若非本人操作请忽略本邮件。</p>
<p>{{.app_name}} 团队</p>`)),
		text: texttemplate.Must(texttemplate.New(constants.EmailTemplatePasswordReset).Parse(`{{.name}}，您好：

我们收到了您的密码重置请求。请打开下方链接设置新密码：

{{.reset_url}}

链接 {{.expire_minutes}} 分钟内有效，且只能使用一次。若非本人操作请忽略本邮件。

{{.app_name}} 团队`)),
	},
	constants.EmailTemplateCommissionNotification: {
		subject: "新的佣金入账通知",
		html: htmltemplate.Must(htmltemplate.New(constants.EmailTemplateCommissionNotification).Parse(`
<p>{{.name}}，您好：</p>
<p>订单 <strong>{{.order_id}}</strong> 已确认，订单金额 {{.amount}}，本单佣金 <strong>{{.commission}}</strong>。</p>
<p>登录后台可查看完整业绩明细。</p>
<p>{{.app_name}} 团队</p>`)),
		text: texttemplate.Must(texttemplate.New(constants.EmailTemplateCommissionNotification).Parse(`{{.name}}，您好：

订单 {{.order_id}} 已确认，订单金额 {{.amount}}，本单佣金 {{.commission}}。
登录后台可查看完整业绩明细。

{{.app_name}} 团队`)),
	},
	constants.EmailTemplateInvoiceIssued: {
		subject: "账单 {{.invoice_number}} 已开具",
		html: htmltemplate.Must(htmltemplate.New(constants.EmailTemplateInvoiceIssued).Parse(`
<p>{{.name}}，您好：</p>
<p>您的佣金账单 <strong>{{.invoice_number}}</strong> 已开具，金额合计 <strong>{{.total}}</strong>。</p>
<p>付款期限：{{.due_date}}。</p>
<p>{{.app_name}} 团队</p>`)),
		text: texttemplate.Must(texttemplate.New(constants.EmailTemplateInvoiceIssued).Parse(`{{.name}}，您好：

您的佣金账单 {{.invoice_number}} 已开具，金额合计 {{.total}}。
付款期限：{{.due_date}}。

{{.app_name}} 团队`)),
	},
}

// renderEmailTemplate 渲染模板，未知模板名返回错误
func renderEmailTemplate(name, appName string, params map[string]string) (string, string, string, error) {
	tpl, ok := emailTemplates[name]
	if !ok {
		return "", "", "", fmt.Errorf("未知的邮件模板: %s", name)
	}

	data := map[string]string{"app_name": appName}
	for k, v := range params {
		data[k] = v
	}

	subjectTpl, err := texttemplate.New("subject").Parse(tpl.subject)
	if err != nil {
		return "", "", "", err
	}
	var subjectBuf bytes.Buffer
	if err := subjectTpl.Execute(&subjectBuf, data); err != nil {
		return "", "", "", err
	}

	var htmlBuf bytes.Buffer
	if err := tpl.html.Execute(&htmlBuf, data); err != nil {
		return "", "", "", err
	}
	var textBuf bytes.Buffer
	if err := tpl.text.Execute(&textBuf, data); err != nil {
		return "", "", "", err
	}
	return subjectBuf.String(), htmlBuf.String(), textBuf.String(), nil
}
