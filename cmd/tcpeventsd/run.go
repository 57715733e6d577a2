package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danmuck/tcpevents/internal/config"
	"github.com/danmuck/tcpevents/internal/host"
	logs "github.com/danmuck/tcpevents/internal/logging"
	"github.com/danmuck/tcpevents/internal/observability"
	"github.com/danmuck/tcpevents/internal/receiver"
)

type lookupFunc func(name string) (any, bool)

// evaluatorEnv exposes stored data to dataRequest expressions.
func evaluatorEnv(lookup lookupFunc) map[string]any {
	return map[string]any{
		"data": func(name string) any {
			v, _ := lookup(name)
			return v
		},
		"has": func(name string) bool {
			_, ok := lookup(name)
			return ok
		},
		"now": func() string {
			return time.Now().UTC().Format(time.RFC3339)
		},
	}
}

func newService(cfg config.Runtime) *receiver.Service {
	var svc *receiver.Service
	eval := host.NewExprEvaluator(evaluatorEnv(func(name string) (any, bool) {
		return svc.GetData(name)
	}))
	svc = receiver.NewService(cfg.Receiver, receiver.Options{Evaluator: eval})
	return svc
}

func run(ctx context.Context, cfg config.Runtime) error {
	svc := newService(cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Run(gctx)
	})
	if cfg.Admin.Addr != "" {
		logger := observability.InitLogger(cfg.Receiver.Node, logs.Logger().GetLevel())
		admin := receiver.NewAdmin(svc, cfg.Admin, logger)
		g.Go(func() error {
			return admin.Run(gctx)
		})
	}
	logs.Infof("tcpeventsd.run listen=%q admin=%q auth=%t", cfg.Receiver.ListenAddr, cfg.Admin.Addr, cfg.Receiver.Password != "")
	return g.Wait()
}
