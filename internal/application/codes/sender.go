package codes

import (
	"context"
	"fmt"

	"github.com/heimu09/ApartXCleaning/internal/domain"
)

// Purpose selects the wording of a delivered code.
type Purpose int

const (
	PurposeRegistration Purpose = iota + 1
	PurposeLogin
)

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Sender delivers one-time codes by email.
type Sender struct {
	mailer mailer
}

func NewSender(m mailer) *Sender { return &Sender{mailer: m} }

// Send delivers code to destination. Any transport failure is reported as
// domain.ErrDeliveryFailed.
func (s *Sender) Send(ctx context.Context, purpose Purpose, destination, code string) error {
	subject, body := message(purpose, code)
	if err := s.mailer.SendEmail(ctx, destination, subject, body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

func message(purpose Purpose, code string) (subject, body string) {
	switch purpose {
	case PurposeLogin:
		return "Login code", fmt.Sprintf("Your login code: %s\n\nIf you did not try to sign in, you can ignore this email.", code)
	default:
		return "Confirmation code", fmt.Sprintf("Your confirmation code: %s\n\nEnter it to finish creating your account.", code)
	}
}
