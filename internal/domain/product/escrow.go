package product

import (
	"errors"

	"github.com/farmline/marketplace/internal/pkg/checked"
)

var (
	ErrInvalidAmount     = errors.New("product: amount must be greater than zero")
	ErrInsufficientFunds = errors.New("product: insufficient escrow funds")
	ErrBalanceOverflow   = errors.New("product: escrow balance out of range")
	ErrNotSold           = errors.New("product: not sold")
	ErrDisputeUnresolved = errors.New("product: dispute unresolved")
)

// Deposit adds amount (cents) to the product's escrow balance.
func (p *Product) Deposit(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	balance, ok := checked.Add(p.Escrow, amount)
	if !ok {
		return ErrBalanceOverflow
	}
	p.Escrow = balance
	p.touch()
	return nil
}

// Withdraw removes amount (cents) from the escrow balance.
func (p *Product) Withdraw(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	balance, ok := checked.Sub(p.Escrow, amount)
	if !ok {
		return ErrInsufficientFunds
	}
	p.Escrow = balance
	p.touch()
	return nil
}

// ReleaseEscrow zeroes the balance once the sale has completed with no open
// dispute. The actual transfer to the seller happens outside the core.
func (p *Product) ReleaseEscrow() (uint64, error) {
	if p.Status != StatusSold {
		return 0, ErrNotSold
	}
	if p.Disputed {
		return 0, ErrDisputeUnresolved
	}
	released := p.Escrow
	p.Escrow = 0
	p.touch()
	return released, nil
}
