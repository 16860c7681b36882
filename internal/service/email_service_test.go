package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"balagh/internal/locale"
)

type fakeSender struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSender) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestEmailServiceDisabled(t *testing.T) {
	s, err := NewEmailService(context.Background(), "us-east-1", "", "", "", false)
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}
	if s.IsEnabled() {
		t.Error("service without a sender address should be disabled")
	}
	if err := s.SendPasswordResetEmail(context.Background(), "a@example.com", locale.English); err != nil {
		t.Errorf("disabled send error = %v", err)
	}
}

func TestSendPasswordResetEmail(t *testing.T) {
	tests := []struct {
		name        string
		lang        locale.Language
		wantSubject string
		wantDir     string
	}{
		{"arabic", locale.Arabic, "إعادة تعيين كلمة المرور في بلّغ", `dir="rtl"`},
		{"english", locale.English, "Reset your Balagh password", `dir="ltr"`},
		{"urdu falls back to english", locale.Urdu, "Reset your Balagh password", `dir="ltr"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			s := newEmailServiceWithSender(sender, "noreply@balagh.app", "Balagh", "https://balagh.app", false)

			if err := s.SendPasswordResetEmail(context.Background(), "sara@example.com", tt.lang); err != nil {
				t.Fatalf("SendPasswordResetEmail() error = %v", err)
			}
			in := sender.input
			if got := aws.ToString(in.FromEmailAddress); got != "Balagh <noreply@balagh.app>" {
				t.Errorf("from = %q", got)
			}
			if got := in.Destination.ToAddresses; len(got) != 1 || got[0] != "sara@example.com" {
				t.Errorf("to = %v", got)
			}
			if got := aws.ToString(in.Content.Simple.Subject.Data); got != tt.wantSubject {
				t.Errorf("subject = %q, want %q", got, tt.wantSubject)
			}
			htmlBody := aws.ToString(in.Content.Simple.Body.Html.Data)
			if !strings.Contains(htmlBody, tt.wantDir) || !strings.Contains(htmlBody, "https://balagh.app/auth/login") {
				t.Errorf("html body missing direction or link:\n%s", htmlBody)
			}
		})
	}
}

func TestSendPasswordResetEmailError(t *testing.T) {
	sender := &fakeSender{err: errors.New("throttled")}
	s := newEmailServiceWithSender(sender, "noreply@balagh.app", "", "https://balagh.app", true)
	if err := s.SendPasswordResetEmail(context.Background(), "sara@example.com", locale.English); err == nil {
		t.Error("SendPasswordResetEmail() should surface SES errors")
	}
}
