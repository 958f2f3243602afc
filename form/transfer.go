package form

import (
	"math/big"

	"pioneer-tui/chain"
	"pioneer-tui/helpers"
)

// TransferDraft is the transfer form.
type TransferDraft struct {
	From   string `json:"from" validate:"required,ss58"`
	To     string `json:"to" validate:"required,ss58,ss58ne=From"`
	Amount string `json:"amount" validate:"required"`
}

var transferMessages = map[string]string{
	"to.ss58ne":       "Cannot transfer to the same account",
	"amount.required": "Amount is required",
}

// ValidateTransfer checks the form and that amount fits into transferable.
// It returns the amount in base units when the form is valid.
func ValidateTransfer(d TransferDraft, transferable *big.Int, decimals int32) (*big.Int, Errors) {
	errs := Errors{}
	collect(validate.Struct(d), errs, "", transferMessages)
	if errs.Has("amount") {
		return nil, errs
	}

	amount, err := helpers.ParseTokens(d.Amount, decimals)
	if err != nil {
		errs.add("amount", err.Error())
		return nil, errs
	}
	if amount.Sign() == 0 {
		errs.add("amount", "Amount must be greater than zero")
		return nil, errs
	}
	if transferable != nil && amount.Cmp(transferable) > 0 {
		errs.add("amount", "Insufficient funds")
		return nil, errs
	}
	if !errs.Valid() {
		return nil, errs
	}
	return amount, errs
}

// TransferTx builds the balances.transfer call for a valid draft.
func TransferTx(d TransferDraft, amount *big.Int) *chain.Tx {
	return chain.TransferTx(d.To, amount)
}
