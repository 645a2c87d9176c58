package cli

import (
	"bufio"
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if addr, ok := a.session.Address(); ok {
		s = shortAddr(addr) + " "
	}
	if m := a.Mode(); m != "" {
		s += string(m)
	}
	if ps := a.payments.State(); ps.Processing {
		s += " …"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the REPL on stdin until the user exits.
func (a *App) Root(ctx context.Context) {
	a.printf("Welcome to datamarket CLI (type 'help' for commands)\n")

	if addr, ok := a.session.Address(); ok {
		a.printf("Wallet account: %s\n", addr)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(lineReader{a.reader}))
}

// lineReader hands out at most one line per Read, so a Scanner on top of it
// never swallows input meant for the prompts that read a.reader directly.
type lineReader struct {
	r *bufio.Reader
}

func (l lineReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := l.r.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		p[n] = b
		n++
		if b == '\n' {
			break
		}
	}
	return n, nil
}

func shortAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
