package models

// MoncashRequest is the standard request structure for the MonCash
// disbursement API.
type MoncashRequest struct {
	Amount         *int64 `json:"amount,omitempty"`
	Currency       string `json:"currency,omitempty"`
	Receiver       string `json:"receiver,omitempty"`
	Reference      string `json:"reference,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
	Description    string `json:"description,omitempty"`
}

// MoncashResponse is the standard response envelope from the MonCash API.
type MoncashResponse struct {
	Status bool                   `json:"status"`
	Code   interface{}            `json:"code"`    // Can be string or null
	Dialog interface{}            `json:"dialog"`  // Can be string, object, or null
	Data   map[string]interface{} `json:"data"`
}

// MoncashTransferData is the transfer confirmation payload.
type MoncashTransferData struct {
	TransactionID string `json:"transactionId"`
	Receiver      string `json:"receiver"`
	AmountCents   int64  `json:"amountCents"`
}

// MoncashBalanceData is the prefunded pool balance payload.
type MoncashBalanceData struct {
	BalanceCents int64 `json:"balanceCents"`
}
