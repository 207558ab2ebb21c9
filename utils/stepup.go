package utils

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jlouissaint/tikepam_backend/models"
)

// StepUpTTL is how long a completed OTP challenge authorizes sensitive
// actions before it expires.
const StepUpTTL = 10 * time.Minute

func stepUpKey(organizerID string) string {
	return "stepup:" + organizerID
}

// StepUpService stores short-lived step-up tokens in Redis. A token is
// written when the organizer completes an OTP challenge and is consumed
// one-shot by the sensitive action it authorizes.
type StepUpService struct {
	redis *redis.Client
}

// NewStepUpService creates a step-up service over the Redis client.
func NewStepUpService(client *redis.Client) *StepUpService {
	return &StepUpService{redis: client}
}

// GenerateSecureOTP returns a 6-character one-time code.
func GenerateSecureOTP() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base32.StdEncoding.EncodeToString(bytes)[:6], nil
}

// RecordStepUp marks the organizer as having completed a fresh OTP
// challenge. Called by the OTP collaborator's completion callback.
func (s *StepUpService) RecordStepUp(ctx context.Context, organizerID string) error {
	token, err := GenerateSecureOTP()
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, stepUpKey(organizerID), token, StepUpTTL).Err()
}

// RequireRecentStepUp fails with a VerificationRequiredError when the
// organizer has no fresh, unconsumed step-up token.
func (s *StepUpService) RequireRecentStepUp(ctx context.Context, organizerID string) error {
	exists, err := s.redis.Exists(ctx, stepUpKey(organizerID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return models.NewStepUpRequired("a recent OTP verification is required for this action")
	}
	return nil
}

// ConsumeStepUp invalidates the organizer's step-up token. GETDEL is atomic,
// so two concurrent consumers of the same token cannot both succeed.
func (s *StepUpService) ConsumeStepUp(ctx context.Context, organizerID string) error {
	val, err := s.redis.GetDel(ctx, stepUpKey(organizerID)).Result()
	if err == redis.Nil || val == "" {
		return models.NewStepUpRequired("step-up token is missing, expired, or already used")
	}
	return err
}
