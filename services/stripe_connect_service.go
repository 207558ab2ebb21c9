package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// StripeConnectService retrieves connected-account status from the card
// gateway. Only the onboarding flags the publish gate needs are decoded.
type StripeConnectService struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewStripeConnectService creates a gateway client from the environment.
func NewStripeConnectService() *StripeConnectService {
	baseURL := os.Getenv("STRIPE_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.stripe.com/v1/"
	}
	secretKey := os.Getenv("STRIPE_SECRET_KEY")
	if secretKey == "" {
		log.Printf("WARNING: STRIPE_SECRET_KEY is missing; card-gateway account checks will fail")
	}
	return &StripeConnectService{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// AccountStatus fetches the onboarding state of a connected account.
func (s *StripeConnectService) AccountStatus(ctx context.Context, accountID string) (*ConnectAccountStatus, error) {
	if s.secretKey == "" {
		return nil, fmt.Errorf("missing STRIPE_SECRET_KEY environment variable")
	}
	if accountID == "" {
		return nil, fmt.Errorf("account ID is required")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"accounts/"+accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var account struct {
		DetailsSubmitted bool `json:"details_submitted"`
		ChargesEnabled   bool `json:"charges_enabled"`
		PayoutsEnabled   bool `json:"payouts_enabled"`
	}
	if err := json.Unmarshal(respBody, &account); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &ConnectAccountStatus{
		DetailsSubmitted: account.DetailsSubmitted,
		ChargesEnabled:   account.ChargesEnabled,
		PayoutsEnabled:   account.PayoutsEnabled,
	}, nil
}
