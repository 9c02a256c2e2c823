package service

type InitiateTopUpCommand struct {
	AccountID   int64
	Amount      int64
	Description string
}

type VerifyTransactionCommand struct {
	TransactionID string `json:"transaction_id"`
	Mode          string `json:"mode"`
}

type HandleCallbackCommand struct {
	RawBody []byte
}

// ReviewCommand carries an unattributable confirmation onto the manual
// review queue together with everything an operator needs to place it.
type ReviewCommand struct {
	ProviderOrderID string            `json:"provider_order_id,omitempty"`
	AlternateID     string            `json:"alternate_id,omitempty"`
	Outcome         string            `json:"outcome"`
	SettledAmount   int64             `json:"settled_amount,omitempty"`
	Reason          string            `json:"reason"`
	RawPayload      map[string]string `json:"raw_payload,omitempty"`
}
