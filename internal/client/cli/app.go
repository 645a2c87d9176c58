package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/dmitrijs2005/datamarket/internal/client/client"
	"github.com/dmitrijs2005/datamarket/internal/client/config"
	"github.com/dmitrijs2005/datamarket/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/datamarket/internal/client/services"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Market is the part of the marketd API the CLI calls directly. Storage and
// payment traffic goes through the session managers instead.
type Market interface {
	Ping(ctx context.Context) error
	Verify(ctx context.Context, cid string) (models.Verification, error)
	Publish(ctx context.Context, cid, seller string) (models.Dataset, error)
	Datasets(ctx context.Context, category string) ([]models.Dataset, error)
	Dataset(ctx context.Context, id string) (models.Dataset, error)
	SellerDatasets(ctx context.Context, seller string) ([]models.Dataset, error)
	Analytics(ctx context.Context, seller string) (models.SellerAnalytics, error)
}

type App struct {
	config *config.Config
	log    logging.Logger

	market   Market
	session  *services.SessionManager
	uploads  *services.UploadManager
	payments *services.PaymentManager
	ledger   uploads.Repository

	reader *bufio.Reader
	out    io.Writer

	modeMu sync.RWMutex
	mode   Mode

	closers []func() error
}

// NewApp connects the CLI to marketd and, if reachable, the signing agent.
// A missing agent is not fatal: the session stays disconnected and connect
// reports the problem.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	mc, err := client.NewMarketClient(ctx, client.Options{
		RPCAddr:    c.RPCAddr,
		HealthAddr: c.HealthAddr,
		Token:      c.Token,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		config: c,
		log:    log,
		market: mc,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	a.closers = append(a.closers, mc.Close)

	db, err := client.InitDatabase(ctx, c.LocalDB)
	if err != nil {
		_ = mc.Close()
		return nil, err
	}
	a.ledger = uploads.NewSQLiteRepository(db)
	a.closers = append(a.closers, db.Close)

	var agent services.Agent
	wallet, closeAgent, err := client.DialAgent(ctx, c.AgentAddr)
	if err != nil {
		log.Warn(ctx, "signing agent unreachable", "addr", c.AgentAddr, "error", err)
	} else {
		agent = wallet
		a.closers = append(a.closers, func() error { closeAgent(); return nil })
	}

	a.session = services.NewSessionManager(agent, log)
	a.uploads = services.NewUploadManager(a.session, mc, log)
	a.payments = services.NewPaymentManager(a.session, mc, log)

	return a, nil
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.printf("Switched to %s mode\n", mode)
	}
}

// Run starts the session, the online watcher and the REPL, and releases
// every connection once the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		if err := a.close(); err != nil {
			a.log.Warn(context.Background(), "close", "error", err)
		}
	}()

	if err := a.session.Start(ctx); err != nil {
		a.log.Warn(ctx, "session start", "error", err)
	}
	a.session.OnChange(a.onSessionChange())

	a.Root(ctx)
}

// close releases connections in reverse order of acquisition.
func (a *App) close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	return err
}

func (a *App) isConnected() bool {
	_, ok := a.session.Address()
	return ok
}

// onSessionChange reports identity changes that did not come from a
// command, e.g. the user switching accounts in the agent.
func (a *App) onSessionChange() func(services.SessionState) {
	var mu sync.Mutex
	last := a.session.State().Address
	return func(st services.SessionState) {
		mu.Lock()
		defer mu.Unlock()
		if st.Connecting || st.Address == last {
			return
		}
		last = st.Address
		if st.Connected {
			a.printf("\nWallet account: %s\n", st.Address)
		} else {
			a.printf("\nWallet disconnected\n")
		}
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.market.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
