package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/fil"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

// Buy opens a payment stream to the seller of a dataset at its list price.
func (a *App) Buy(ctx context.Context, args []string) error {
	id, err := requireArg(args, "buy <id>")
	if err != nil {
		a.printf("%s\n", err)
		return err
	}

	d, err := a.market.Dataset(ctx, id)
	if err != nil {
		a.printf("Dataset unavailable: %s\n", err)
		return err
	}

	a.printf("Paying %s to %s for %q...\n", fil.Format(d.Price), d.Seller, d.Title)
	tid, err := a.payments.CreatePayment(ctx, d.ID, d.Seller, d.Price)
	if err != nil {
		a.printf("Payment failed: %s\n", err)
		return err
	}
	a.printf("Transfer %s started\n", tid)
	a.printf("Content CID: %s\n", d.CID)
	return nil
}

func (a *App) Payment(ctx context.Context, args []string) error {
	id, err := requireArg(args, "payment <id>")
	if err != nil {
		a.printf("%s\n", err)
		return err
	}

	st, err := a.payments.PaymentStatus(ctx, id)
	if err != nil {
		a.printf("Status failed: %s\n", err)
		return err
	}

	a.printf("Transfer: %s\n", st.ID)
	a.printf("Status:   %s\n", st.Status)
	a.printf("Amount:   %s\n", fil.Format(st.Amount))
	a.printf("Started:  %s\n", st.StartTime.Local().Format(time.DateTime))
	if st.EndTime != nil {
		a.printf("Ended:    %s\n", st.EndTime.Local().Format(time.DateTime))
	}
	return nil
}

func (a *App) Cancel(ctx context.Context, args []string) error {
	id, err := requireArg(args, "cancel <id>")
	if err != nil {
		a.printf("%s\n", err)
		return err
	}

	if err := a.payments.CancelPayment(ctx, id); err != nil {
		a.printf("Cancel failed: %s\n", err)
		return err
	}
	a.printf("Transfer %s cancelled\n", id)
	return nil
}

func (a *App) Streams(ctx context.Context) error {
	list, err := a.payments.ActiveStreams(ctx)
	if err != nil {
		a.printf("Streams unavailable: %s\n", err)
		return err
	}
	if len(list) == 0 {
		a.printf("No active streams\n")
		return nil
	}
	a.printTransfers(list)
	return nil
}

func (a *App) History(ctx context.Context) error {
	if !a.isConnected() {
		a.printf("Connect a wallet to see your history\n")
		return nil
	}
	list, err := a.payments.History(ctx)
	if err != nil {
		a.printf("History unavailable: %s\n", err)
		return err
	}
	if len(list) == 0 {
		a.printf("No transfers\n")
		return nil
	}
	a.printTransfers(list)
	return nil
}

func (a *App) printTransfers(list []models.Transfer) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tAMOUNT\tSTATUS\tSTARTED")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.ItemID, fil.Format(t.Amount), t.Status, t.StartTime.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}
