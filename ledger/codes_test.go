package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitfsorg/libibom-go/auth"
	"github.com/bitfsorg/libibom-go/registry"
	"github.com/bitfsorg/libibom-go/revshare"
	"github.com/bitfsorg/libibom-go/splitter"
	"github.com/bitfsorg/libibom-go/vault"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"uri", registry.ErrURITooLong, CodeURITooLong},
		{"creators", fmt.Errorf("%w: %w", registry.ErrTooManyCreators, revshare.ErrTooManyEntries), CodeTooManyCreators},
		{"members", fmt.Errorf("%w: %w", splitter.ErrTooManyMembers, revshare.ErrTooManyEntries), CodeTooManyMembers},
		{"entries", revshare.ErrTooManyEntries, CodeTooManyEntries},
		{"sum", fmt.Errorf("wrapped: %w", revshare.ErrInvalidSharesSum), CodeInvalidSharesSum},
		{"duplicate", revshare.ErrDuplicateBeneficiary, CodeDuplicateBeneficiary},
		{"unauthorized", auth.ErrUnauthorized, CodeUnauthorized},
		{"amount", splitter.ErrInvalidAmount, CodeInvalidAmount},
		{"vault amount", vault.ErrInvalidAmount, CodeInvalidAmount},
		{"not member", splitter.ErrNotAMember, CodeNotAMember},
		{"nothing", splitter.ErrNothingToClaim, CodeNothingToClaim},
		{"kind", splitter.ErrWrongPoolKind, CodeWrongPoolKind},
		{"native asset", splitter.ErrNativeAsset, CodeNativeAsset},
		{"work exists", registry.ErrWorkExists, CodeWorkExists},
		{"work missing", registry.ErrWorkNotFound, CodeWorkNotFound},
		{"pool exists", splitter.ErrPoolExists, CodePoolExists},
		{"pool missing", splitter.ErrPoolNotFound, CodePoolNotFound},
		{"funds", vault.ErrInsufficientFunds, CodeInsufficientFunds},
		{"overflow", vault.ErrBalanceOverflow, CodeBalanceOverflow},
		{"faucet", ErrFaucetDisabled, CodeFaucetDisabled},
		{"canceled", context.Canceled, CodeCanceled},
		{"deadline", context.DeadlineExceeded, CodeCanceled},
		{"unknown", errors.New("disk on fire"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestIsRejection(t *testing.T) {
	assert.False(t, IsRejection(nil))
	assert.False(t, IsRejection(errors.New("boom")))
	assert.False(t, IsRejection(context.Canceled))
	assert.True(t, IsRejection(splitter.ErrNothingToClaim))
	assert.True(t, IsRejection(auth.ErrUnauthorized))
}
