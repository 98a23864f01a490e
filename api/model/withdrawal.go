package model

import "github.com/shopspring/decimal"

type CreateWithdrawal struct {
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod string           `json:"payment_method"`
	Otp           string           `json:"otp"`
}

type BalanceQuery struct {
	Refresh bool `form:"refresh"`
}
