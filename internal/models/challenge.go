package models

// ChallengeType identifies which verification strategy produced a payload.
type ChallengeType string

const (
	ChallengeTypeNone             ChallengeType = "no_challenge"
	ChallengeTypeEmailOTP         ChallengeType = "email_otp"
	ChallengeTypeSecurityQuestion ChallengeType = "security_question"
)

// ChallengePayload is what a challenge strategy hands back for the client to
// render. For the email OTP type the code itself is never included; it only
// travels by mail.
type ChallengePayload struct {
	Type      ChallengeType      `json:"type"`
	Message   string             `json:"message"`
	Username  string             `json:"username"`
	RiskLevel RiskLevel          `json:"risk_level"`
	Questions []SecurityQuestion `json:"questions,omitempty"`
}
