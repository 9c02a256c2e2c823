package v1

type InitiateTopUpRequest struct {
	AccountID   int64  `json:"account_id" validate:"required,min=1"`
	Amount      int64  `json:"amount" validate:"required,min=1"`
	Description string `json:"description" validate:"max=1024"`
}
