package mailer

import (
	"strings"
	"testing"
)

func TestRenderVerifyOTP(t *testing.T) {
	job := NewOTPJob("verify_otp", "a@example.com", "Alice", "DesiNetwork", "123456", 15)

	subject, text, html, err := Render(job.Template, job.Data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(subject, "DesiNetwork") {
		t.Errorf("subject %q missing app name", subject)
	}
	for name, body := range map[string]string{"text": text, "html": html} {
		if !strings.Contains(body, "123456") {
			t.Errorf("%s body missing code: %q", name, body)
		}
		if !strings.Contains(body, "15") {
			t.Errorf("%s body missing expiry: %q", name, body)
		}
	}
	if !strings.Contains(html, "Alice") {
		t.Errorf("html body missing name: %q", html)
	}
}

func TestRenderResetOTPFallsBackOnEmptyName(t *testing.T) {
	job := NewOTPJob("reset_otp", "a@example.com", "", "DesiNetwork", "654321", 15)

	_, _, html, err := Render(job.Template, job.Data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "there") {
		t.Errorf("expected the neutral greeting, got %q", html)
	}
	if !strings.Contains(html, "password reset") {
		t.Errorf("expected the reset intro, got %q", html)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, _, _, err := Render("universal", nil); err == nil {
		t.Fatal("expected an error for an unknown template")
	}
}
