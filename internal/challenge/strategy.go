package challenge

import (
	"context"
	"strings"

	"github.com/askeland/riskgate/internal/models"
)

// Request carries the identity a strategy issues a challenge against. Email
// is where the OTP strategy delivers its code; other strategies ignore it.
type Request struct {
	Username string
	Email    string
}

// Response carries a user's answer to a previously issued challenge.
// QuestionID is only meaningful for the security-question strategy.
type Response struct {
	Username   string
	Answer     string
	QuestionID int64
}

// Strategy is one way of verifying that the person driving a recovery flow
// controls the account. Render issues the challenge; Validate checks the
// answer. Validate reports (false, nil) for a plain wrong answer and reserves
// the error return for infrastructure failures.
type Strategy interface {
	Type() models.ChallengeType
	Render(ctx context.Context, req Request) (*models.ChallengePayload, error)
	Validate(ctx context.Context, resp Response) (bool, error)
}

// NormalizeAnswer canonicalizes free-text answers so that casing and
// surrounding whitespace never fail a legitimate user.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// Client-facing messages per challenge type. Shared so a decoy payload is
// byte-for-byte identical to a real one.
const (
	messageNone             = "No additional verification is required."
	messageEmailOTP         = "A verification code has been sent to your email address."
	messageSecurityQuestion = "Answer one of your security questions to continue."
)

// DecoyPayload builds a payload that looks exactly like a rendered challenge
// without performing any side effects. Used for identities that do not
// exist, so the response never reveals whether an account is real.
func DecoyPayload(t models.ChallengeType, username string) *models.ChallengePayload {
	payload := &models.ChallengePayload{
		Type:     t,
		Username: username,
	}
	switch t {
	case models.ChallengeTypeNone:
		payload.Message = messageNone
	case models.ChallengeTypeSecurityQuestion:
		payload.Message = messageSecurityQuestion
	default:
		payload.Message = messageEmailOTP
	}
	return payload
}
