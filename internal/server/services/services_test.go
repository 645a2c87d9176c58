package services

import (
	"sync"
	"testing"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/server/blobstore"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/repomanager"
)

const (
	alice = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	bob   = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	carol = "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"
)

type countingRecorder struct {
	mu        sync.Mutex
	uploads   int
	bytes     int
	created   int
	cancelled int
	completed int
}

func (r *countingRecorder) RecordUpload(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads++
	r.bytes += n
}

func (r *countingRecorder) RecordTransferCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) RecordTransferCancelled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled++
}

func (r *countingRecorder) RecordTransfersCompleted(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed += n
}

func (r *countingRecorder) RecordAuthFailure() {}
func (r *countingRecorder) RecordRateLimited() {}

type fixture struct {
	rm      *repomanager.MemoryRepositoryManager
	blobs   *blobstore.MemoryStore
	rec     *countingRecorder
	storage *StorageService
	payment *PaymentService
	catalog *CatalogService
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		rm:    repomanager.NewMemoryRepositoryManager(),
		blobs: blobstore.NewMemoryStore(),
		rec:   &countingRecorder{},
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	log := logging.Discard()
	now := func() time.Time { return f.clock }

	f.storage = NewStorageService(f.rm, f.blobs, f.rec, log)
	f.storage.now = now
	f.payment = NewPaymentService(f.rm, f.rec, log, 24*time.Hour)
	f.payment.now = now
	f.catalog = NewCatalogService(f.rm, log)
	return f
}

func mustCID(t *testing.T, s string) cid.Cid {
	t.Helper()
	c, err := cid.Decode(s)
	if err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return c
}
