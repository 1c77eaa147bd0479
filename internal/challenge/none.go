package challenge

import (
	"context"

	"github.com/askeland/riskgate/internal/models"
)

// NoChallenge is the pass-through strategy for low-risk attempts. It issues
// nothing and accepts everything; the caller proceeds straight to the reset
// token.
type NoChallenge struct{}

func NewNoChallenge() *NoChallenge {
	return &NoChallenge{}
}

func (n *NoChallenge) Type() models.ChallengeType {
	return models.ChallengeTypeNone
}

func (n *NoChallenge) Render(ctx context.Context, req Request) (*models.ChallengePayload, error) {
	return &models.ChallengePayload{
		Type:     models.ChallengeTypeNone,
		Message:  messageNone,
		Username: req.Username,
	}, nil
}

func (n *NoChallenge) Validate(ctx context.Context, resp Response) (bool, error) {
	return true, nil
}
