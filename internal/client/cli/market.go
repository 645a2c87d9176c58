package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/fil"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

// Market lists catalog datasets, optionally filtered by category.
func (a *App) Market(ctx context.Context, args []string) error {
	category := ""
	if len(args) > 0 {
		c, err := models.ParseCategory(args[0])
		if err != nil {
			a.printf("%s\n", err)
			return err
		}
		category = string(c)
	}

	list, err := a.market.Datasets(ctx, category)
	if err != nil {
		a.printf("Market unavailable: %s\n", err)
		return err
	}
	if len(list) == 0 {
		a.printf("No datasets\n")
		return nil
	}
	a.printDatasets(list)
	return nil
}

func (a *App) printDatasets(list []models.Dataset) {
	titleWidth := lineWidth() - 60
	if titleWidth < 10 {
		titleWidth = 10
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE\tSALES")
	for _, d := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", d.ID, truncate(d.Title, titleWidth), d.Category, fil.Format(d.Price), d.Sales)
	}
	_ = tw.Flush()
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := requireArg(args, "show <id>")
	if err != nil {
		a.printf("%s\n", err)
		return err
	}

	d, err := a.market.Dataset(ctx, id)
	if err != nil {
		a.printf("Show failed: %s\n", err)
		return err
	}

	a.printf("ID:        %s\n", d.ID)
	a.printf("Title:     %s\n", d.Title)
	a.printf("Category:  %s\n", d.Category)
	a.printf("Price:     %s\n", fil.Format(d.Price))
	a.printf("Seller:    %s\n", d.Seller)
	a.printf("File:      %s (%d bytes)\n", d.FileName, d.FileSize)
	a.printf("CID:       %s\n", d.CID)
	a.printf("Uploaded:  %s\n", d.UploadedAt.Local().Format(time.DateTime))
	a.printf("Views:     %d  Sales: %d\n", d.Views, d.Sales)
	if d.Description != "" {
		a.printf("\n%s\n", d.Description)
	}
	return nil
}

// Dashboard shows the connected account's listings and outgoing streams.
func (a *App) Dashboard(ctx context.Context) error {
	addr, ok := a.session.Address()
	if !ok {
		a.printf("Connect a wallet to see your dashboard\n")
		return nil
	}

	mine, err := a.market.SellerDatasets(ctx, addr)
	if err != nil {
		a.printf("Listings unavailable: %s\n", err)
		return err
	}
	a.printf("Your datasets (%d)\n", len(mine))
	if len(mine) > 0 {
		a.printDatasets(mine)
	}

	streams, err := a.payments.ActiveStreams(ctx)
	if err != nil {
		a.printf("Streams unavailable: %s\n", err)
		return err
	}
	a.printf("\nActive streams (%d)\n", len(streams))
	if len(streams) > 0 {
		a.printTransfers(streams)
	}
	return nil
}

func (a *App) Analytics(ctx context.Context) error {
	addr, ok := a.session.Address()
	if !ok {
		a.printf("Connect a wallet to see analytics\n")
		return nil
	}

	s, err := a.market.Analytics(ctx, addr)
	if err != nil {
		a.printf("Analytics unavailable: %s\n", err)
		return err
	}

	a.printf("Datasets:        %d\n", s.Datasets)
	a.printf("Views:           %d\n", s.TotalViews)
	a.printf("Sales:           %d\n", s.TotalSales)
	a.printf("Revenue:         %s\n", fil.Format(s.Revenue))
	a.printf("Conversion:      %.1f%%\n", s.ConversionRate*100)
	a.printf("Avg order value: %s\n", fil.Format(s.AverageOrderValue))
	if len(s.TopDatasets) > 0 {
		a.printf("\nTop datasets\n")
		a.printDatasets(s.TopDatasets)
	}
	return nil
}
