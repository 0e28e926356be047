package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

// Two templates exist: the email-verification passcode and the password-reset
// passcode. Both render the same fields.

const otpHTML = `<p>Hi {{.Name | orThere}},</p>
<p>{{.Intro}}</p>
<p style="font-size: 28px; font-weight: bold; letter-spacing: 4px; color: #f59e0b;">{{.Code}}</p>
<p>This code expires in {{.ExpiryMinutes}} minutes. If you didn't request this, you can ignore this email.</p>`

const otpText = `{{.Intro}} {{.Code}}. It expires in {{.ExpiryMinutes}} minutes.`

var (
	htmlTpl = htmpl.Must(htmpl.New("otp").Funcs(htmpl.FuncMap{"orThere": orThere}).Parse(otpHTML))
	textTpl = texttpl.Must(texttpl.New("otp").Parse(otpText))
)

func orThere(v any) string {
	s := fmt.Sprintf("%v", v)
	if s == "" || s == "<nil>" {
		return "there"
	}
	return s
}

type templateMeta struct {
	subject string
	intro   string
}

var templates = map[string]templateMeta{
	"verify_otp": {
		subject: "Your verification code - %s",
		intro:   "Your verification code for %s is:",
	},
	"reset_otp": {
		subject: "Your password reset code - %s",
		intro:   "Your password reset code for %s is:",
	},
}

// Render produces subject, text and HTML bodies for a template name.
func Render(template string, data map[string]any) (subject, text, html string, err error) {
	meta, ok := templates[template]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", template)
	}
	appName := fmt.Sprintf("%v", data["AppName"])
	subject = fmt.Sprintf(meta.subject, appName)

	ctx := map[string]any{
		"Name":          data["Name"],
		"Code":          data["Code"],
		"ExpiryMinutes": data["ExpiryMinutes"],
		"Intro":         fmt.Sprintf(meta.intro, appName),
	}

	var hb, tb bytes.Buffer
	if err = htmlTpl.Execute(&hb, ctx); err != nil {
		return "", "", "", err
	}
	if err = textTpl.Execute(&tb, ctx); err != nil {
		return "", "", "", err
	}
	return subject, tb.String(), hb.String(), nil
}
