package cli

import (
	"context"
	"fmt"
)

func (a *App) Connect(ctx context.Context) error {
	addr, err := a.session.Connect(ctx)
	if err != nil {
		a.printf("Connect failed: %s\n", err)
		return err
	}
	a.printf("Connected as %s\n", addr)
	return nil
}

func (a *App) Disconnect(ctx context.Context) error {
	a.session.Disconnect()
	a.printf("Disconnected\n")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	st := a.session.State()
	if !st.Connected {
		a.printf("Not connected\n")
	} else {
		a.printf("Account:  %s\n", st.Address)
	}
	if st.Error != "" {
		a.printf("Wallet:   %s\n", st.Error)
	}

	up := a.uploads.State()
	switch {
	case up.InProgress:
		a.printf("Upload:   in progress\n")
	case up.CID != "":
		a.printf("Upload:   last cid %s\n", up.CID)
	case up.Error != "":
		a.printf("Upload:   %s\n", up.Error)
	}

	ps := a.payments.State()
	if ps.LastTransferID != "" {
		a.printf("Payment:  last transfer %s\n", ps.LastTransferID)
	}
	if ps.Error != "" {
		a.printf("Payment:  %s\n", ps.Error)
	}
	a.printf("Mode:     %s\n", a.Mode())
	return nil
}

func requireArg(args []string, usage string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return args[0], nil
}
