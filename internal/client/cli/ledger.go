package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	clientmodels "github.com/dmitrijs2005/datamarket/internal/client/models"
	"github.com/dmitrijs2005/datamarket/internal/fil"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

// recordUpload notes a stored upload in the local ledger. Failures are only
// logged: the content is already on the network.
func (a *App) recordUpload(ctx context.Context, cid, owner string, meta models.UploadMetadata) {
	rec := &clientmodels.UploadRecord{
		CID:        cid,
		Owner:      owner,
		Title:      meta.Title,
		Category:   string(meta.Category),
		Price:      fil.Unitless(meta.Price),
		FileName:   meta.FileName,
		FileSize:   meta.FileSize,
		UploadedAt: meta.CreatedAt,
	}
	if err := a.ledger.Save(ctx, rec); err != nil {
		a.log.Warn(ctx, "local ledger save", "cid", cid, "error", err)
	}
}

// Uploads lists the connected account's uploads from the local ledger. It
// does not contact marketd.
func (a *App) Uploads(ctx context.Context) error {
	owner, ok := a.session.Address()
	if !ok {
		err := fmt.Errorf("connect a wallet first")
		a.printf("%s\n", err)
		return err
	}

	list, err := a.ledger.ListByOwner(ctx, owner)
	if err != nil {
		a.printf("Cannot read local ledger: %s\n", err)
		return err
	}
	if len(list) == 0 {
		a.printf("No uploads yet\n")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CID\tTITLE\tCATEGORY\tPRICE\tSIZE\tLISTING\tUPLOADED")
	for _, r := range list {
		listing := r.DatasetID
		if listing == "" {
			listing = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s FIL\t%d\t%s\t%s\n",
			r.CID, truncate(r.Title, 24), r.Category, r.Price, r.FileSize, listing,
			r.UploadedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}
