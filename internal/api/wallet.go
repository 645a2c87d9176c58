package api

import "context"

// Wallet is served by the signing agent under the "Wallet" namespace.
// Accounts are opaque identity strings; the first one is the active account.
type Wallet interface {
	// WalletAccounts returns the accounts already authorized for this
	// client without prompting.
	WalletAccounts(ctx context.Context) ([]string, error)
	// WalletRequestAccounts asks the agent to authorize accounts.
	WalletRequestAccounts(ctx context.Context) ([]string, error)
	// WalletAccountsChanged streams the authorized account list whenever
	// it changes. The channel is closed when ctx is done.
	WalletAccountsChanged(ctx context.Context) (<-chan []string, error)

	// WalletSelect makes the account at index the active one.
	WalletSelect(ctx context.Context, index int) ([]string, error)
	// WalletLock revokes all authorizations.
	WalletLock(ctx context.Context) error
}

type WalletStruct struct {
	Internal struct {
		WalletAccounts        func(ctx context.Context) ([]string, error)
		WalletRequestAccounts func(ctx context.Context) ([]string, error)
		WalletAccountsChanged func(ctx context.Context) (<-chan []string, error)
		WalletSelect          func(ctx context.Context, index int) ([]string, error)
		WalletLock            func(ctx context.Context) error
	}
}

var _ Wallet = (*WalletStruct)(nil)

func (s *WalletStruct) WalletAccounts(ctx context.Context) ([]string, error) {
	return s.Internal.WalletAccounts(ctx)
}

func (s *WalletStruct) WalletRequestAccounts(ctx context.Context) ([]string, error) {
	return s.Internal.WalletRequestAccounts(ctx)
}

func (s *WalletStruct) WalletAccountsChanged(ctx context.Context) (<-chan []string, error) {
	return s.Internal.WalletAccountsChanged(ctx)
}

func (s *WalletStruct) WalletSelect(ctx context.Context, index int) ([]string, error) {
	return s.Internal.WalletSelect(ctx, index)
}

func (s *WalletStruct) WalletLock(ctx context.Context) error {
	return s.Internal.WalletLock(ctx)
}
