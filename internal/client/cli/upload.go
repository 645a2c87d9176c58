package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/fil"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

// Upload stores a local file through the upload manager and lists it in
// the catalog under the connected account.
func (a *App) Upload(ctx context.Context, args []string) error {
	path, err := requireArg(args, "upload <path>")
	if err != nil {
		a.printf("%s\n", err)
		return err
	}

	if !a.uploads.IsInitialized() {
		err := fmt.Errorf("connect a wallet first")
		a.printf("%s\n", err)
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		a.printf("Cannot open file: %s\n", err)
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		a.printf("Cannot stat file: %s\n", err)
		return err
	}

	meta, err := a.inputUploadMetadata(ctx, filepath.Base(path), info.Size())
	if err != nil {
		a.printf("%s\n", err)
		return err
	}

	a.printf("Uploading %s (%d bytes)...\n", meta.FileName, meta.FileSize)
	cid, err := a.uploads.UploadFile(ctx, f, meta)
	if err != nil {
		a.printf("Upload failed: %s\n", err)
		return err
	}
	a.printf("Stored with CID %s\n", cid)

	seller, _ := a.session.Address()
	a.recordUpload(ctx, cid, seller, meta)

	ds, err := a.market.Publish(ctx, cid, seller)
	if err != nil {
		a.printf("Listing failed: %s\n", err)
		return err
	}
	a.printf("Listed as %s\n", ds.ID)

	if err := a.ledger.SetDatasetID(ctx, cid, ds.ID); err != nil {
		a.log.Warn(ctx, "local ledger update", "cid", cid, "error", err)
	}
	return nil
}

func (a *App) inputUploadMetadata(ctx context.Context, fileName string, size int64) (models.UploadMetadata, error) {
	meta := models.UploadMetadata{FileName: fileName, FileSize: size, CreatedAt: time.Now().UTC()}

	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return meta, err
	}
	if title == "" {
		return meta, fmt.Errorf("title is required")
	}
	meta.Title = title

	if err := ctx.Err(); err != nil {
		return meta, err
	}

	desc, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return meta, err
	}
	meta.Description = desc

	cat, err := GetSimpleText(a.reader, fmt.Sprintf("Category %v (empty for other)", models.Categories), a.out)
	if err != nil {
		return meta, err
	}
	if cat == "" {
		meta.Category = models.CategoryOther
	} else if meta.Category, err = models.ParseCategory(cat); err != nil {
		return meta, err
	}

	price, err := GetSimpleText(a.reader, "Price in FIL", a.out)
	if err != nil {
		return meta, err
	}
	if meta.Price, err = fil.Parse(price); err != nil {
		return meta, fmt.Errorf("price: %w", err)
	}

	return meta, meta.Validate()
}

func (a *App) Status(ctx context.Context, args []string) error {
	cid, err := requireArg(args, "status <cid>")
	if err != nil {
		a.printf("%s\n", err)
		return err
	}

	st, err := a.uploads.FileStatus(ctx, cid)
	if err != nil {
		a.printf("Status failed: %s\n", err)
		return err
	}

	a.printf("CID:      %s\n", st.CID)
	a.printf("State:    %s\n", st.State)
	a.printf("Size:     %d bytes\n", st.Size)
	a.printf("Owner:    %s\n", st.Owner)
	a.printf("Stored:   %s\n", st.StoredAt.Local().Format(time.DateTime))
	if st.Metadata.Title != "" {
		a.printf("Title:    %s\n", st.Metadata.Title)
	}
	return nil
}

func (a *App) Verify(ctx context.Context, args []string) error {
	cid, err := requireArg(args, "verify <cid>")
	if err != nil {
		a.printf("%s\n", err)
		return err
	}

	v, err := a.market.Verify(ctx, cid)
	if err != nil {
		a.printf("Verify failed: %s\n", err)
		return err
	}
	if v.Valid {
		a.printf("OK: %s matches its content (%d bytes)\n", v.CID, v.Size)
	} else {
		a.printf("MISMATCH: stored bytes of %s do not hash to it\n", v.CID)
	}
	return nil
}
