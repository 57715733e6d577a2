package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/danmuck/tcpevents/internal/config"
	logs "github.com/danmuck/tcpevents/internal/logging"
	"github.com/danmuck/tcpevents/internal/sender"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath           string
	address              string
	port                 int
	password             string
	connectTimeout       time.Duration
	communicationTimeout time.Duration
}

func main() {
	logs.ConfigureRuntime()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tcpeventsctl: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "tcpeventsctl",
		Short: "Send events and data to a TCPEvents receiver",
		Long: `tcpeventsctl speaks the TCPEvents line protocol.

It fires events, stores named data and asks a receiver to evaluate
expressions. Legacy receivers are detected from the handshake reply.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "tcpevents TOML config for sender defaults")
	pf.StringVarP(&opts.address, "address", "a", "127.0.0.1", "receiver host or host:port")
	pf.IntVarP(&opts.port, "port", "p", 0, "receiver port (default from config, 1024)")
	pf.StringVar(&opts.password, "password", "", "shared password, empty skips the handshake")
	pf.DurationVar(&opts.connectTimeout, "connect-timeout", 0, "connect timeout override")
	pf.DurationVar(&opts.communicationTimeout, "timeout", 0, "per read/write timeout override")

	root.AddCommand(
		sendEventCmd(opts),
		sendDataCmd(opts),
		requestDataCmd(opts),
		getDataCmd(opts),
	)
	return root
}

func (o *globalOptions) client() (*sender.Client, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	return sender.NewClient(cfg.Sender), nil
}

func (o *globalOptions) destination() sender.Destination {
	return sender.Destination{
		Address:              o.address,
		Port:                 o.port,
		Password:             o.password,
		ConnectTimeout:       o.connectTimeout,
		CommunicationTimeout: o.communicationTimeout,
	}
}
