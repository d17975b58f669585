package system

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/studyflow/internal/api"
	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/keyring"
	"github.com/julianstephens/studyflow/internal/logger"
)

type ServeCmd struct {
	Addr     string `help:"Listen address." default:"${serve_addr}"`
	Token    string `help:"Bearer token required on /api. Defaults to the keyring API token." env:"STUDYFLOW_API_TOKEN"`
	GinDebug bool   `help:"Run gin in debug mode."`
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// token prefers --token, then the keyring. Empty disables auth.
func (c *ServeCmd) token() string {
	if c.Token != "" {
		return c.Token
	}
	token, err := keyring.Get(keyring.SecretAPIToken)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("Keyring lookup for API token failed", "error", err)
		}
		return ""
	}
	return token
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	token := c.token()
	if !isLoopback(c.Addr) && token == "" {
		return fmt.Errorf("refusing to listen on %s without a token; set one with '%s keyring set --api-token --generate'",
			c.Addr, constants.AppName)
	}

	if !c.GinDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := api.NewServer(c.Addr, api.RouterConfig{
		Store:   ctx.Store,
		Planner: ctx.Planner(),
		Token:   token,
		Now:     ctx.Clock,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(ctx.Out(), "Serving %s API on http://%s (auth: %v)\n", constants.AppName, c.Addr, token != "")
	return srv.Run(runCtx)
}
