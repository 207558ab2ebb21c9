package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jlouissaint/tikepam_backend/models"
)

// MoncashRail is the part of the MonCash client the withdrawal processor
// depends on.
type MoncashRail interface {
	Transfer(ctx context.Context, receiver string, amountCents int64, currency, idempotencyKey string) (*models.MoncashTransferData, error)
	PoolBalance(ctx context.Context) (int64, error)
	PrefundingEnabled() bool
}

// transferTimeout bounds the blocking disbursement call. A timeout is treated
// as failure; the request is never auto-retried because the idempotency key
// is attached to a single attempt.
const transferTimeout = 10 * time.Second

// MoncashService handles interactions with the MonCash disbursement API.
type MoncashService struct {
	baseURL    string
	clientID   string
	secret     string
	prefunding bool
	client     *http.Client
}

// NewMoncashService creates a MonCash service instance from the environment.
func NewMoncashService() *MoncashService {
	baseURL := os.Getenv("MONCASH_BASE_URL")
	if baseURL == "" {
		baseURL = "https://sandbox.moncashbutton.digicelgroup.com/Api/"
	}

	clientID := os.Getenv("MONCASH_CLIENT_ID")
	secret := os.Getenv("MONCASH_SECRET")
	prefunding := os.Getenv("MONCASH_PREFUNDING_ENABLED") == "true"

	if clientID == "" || secret == "" {
		log.Printf("WARNING: MonCash credentials not fully configured:")
		if clientID == "" {
			log.Printf("  - MONCASH_CLIENT_ID is missing")
		}
		if secret == "" {
			log.Printf("  - MONCASH_SECRET is missing")
		}
		log.Printf("Instant MonCash transfers will fail until these are set")
	} else {
		log.Printf("MonCash Service Configuration:")
		log.Printf("  Base URL: %s", baseURL)
		log.Printf("  Client ID: %s", clientID)
		log.Printf("  Prefunding: %v", prefunding)
		log.Printf("  Secret: [CONFIGURED]")
	}

	return &MoncashService{
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
		prefunding: prefunding,
		client:     &http.Client{Timeout: transferTimeout},
	}
}

// PrefundingEnabled reports whether the platform prefunded pool is active.
func (s *MoncashService) PrefundingEnabled() bool {
	return s.prefunding
}

func (s *MoncashService) getHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"clientId":     s.clientID,
		"secret":       s.secret,
	}
}

// makeRequest performs an HTTP request against the MonCash API.
func (s *MoncashService) makeRequest(ctx context.Context, method, endpoint string, payload interface{}) (*models.MoncashResponse, error) {
	if s.clientID == "" || s.secret == "" {
		return nil, fmt.Errorf("missing MonCash credentials. Please set MONCASH_CLIENT_ID and MONCASH_SECRET environment variables")
	}

	url := s.baseURL + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range s.getHeaders() {
		req.Header.Set(key, value)
	}

	if os.Getenv("MONCASH_DEBUG") == "true" {
		log.Printf("MonCash API Request: %s %s", method, url)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if os.Getenv("MONCASH_DEBUG") == "true" {
		log.Printf("MonCash API Response: %s", string(respBody))
	}

	var mcResp models.MoncashResponse
	if err := json.Unmarshal(respBody, &mcResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !mcResp.Status {
		code := "unknown"
		if mcResp.Code != nil {
			if codeStr, ok := mcResp.Code.(string); ok {
				code = codeStr
			} else {
				code = fmt.Sprintf("%v", mcResp.Code)
			}
		}
		var errorMsg string
		if mcResp.Dialog != nil {
			if dialogMap, ok := mcResp.Dialog.(map[string]interface{}); ok {
				if msg, ok := dialogMap["message"].(string); ok {
					errorMsg = fmt.Sprintf("%s - %s", code, msg)
				}
			}
		}
		if errorMsg == "" {
			errorMsg = code
		}
		log.Printf("MonCash API Error: Code=%s, Dialog=%v", code, mcResp.Dialog)
		return &mcResp, fmt.Errorf("moncash API error: %s", errorMsg)
	}

	return &mcResp, nil
}

// Transfer sends an instant disbursement from the prefunded pool to a
// MonCash number. The idempotency key guards against double payment if the
// call has to be investigated after a timeout.
func (s *MoncashService) Transfer(ctx context.Context, receiver string, amountCents int64, currency, idempotencyKey string) (*models.MoncashTransferData, error) {
	ctx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()

	amount := amountCents
	payload := models.MoncashRequest{
		Amount:         &amount,
		Currency:       currency,
		Receiver:       receiver,
		IdempotencyKey: idempotencyKey,
		Description:    "ticket sales payout",
	}

	resp, err := s.makeRequest(ctx, "POST", "v1/Transfert", payload)
	if err != nil {
		return nil, err
	}

	data := &models.MoncashTransferData{
		Receiver:    receiver,
		AmountCents: amountCents,
	}
	if txn, ok := resp.Data["transactionId"].(string); ok {
		data.TransactionID = txn
	}
	return data, nil
}

// PoolBalance retrieves the remaining prefunded pool balance in cents.
func (s *MoncashService) PoolBalance(ctx context.Context) (int64, error) {
	resp, err := s.makeRequest(ctx, "GET", "v1/Account/balance", nil)
	if err != nil {
		return 0, err
	}
	if balance, ok := resp.Data["balanceCents"].(float64); ok {
		return int64(balance), nil
	}
	return 0, fmt.Errorf("unexpected balance response format")
}
