package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/slotbook/internal/api"
	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/constants"
	"github.com/julianstephens/slotbook/internal/logger"
)

type ServeCmd struct {
	Addr string `help:"Address to listen on." default:"${listen_addr}" env:"SLOTBOOK_LISTEN_ADDR"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := c.Addr
	if addr == "" {
		addr = constants.DefaultListenAddr
	}
	logger.Info("Serving availability API", "addr", addr, "store", ctx.Store.GetConfigPath())
	return api.NewServer(ctx.Store, ctx.Finder).ListenAndServe(sigCtx, addr)
}
