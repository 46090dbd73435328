// Package lib wires the engine's collaborators together into a runnable
// process: the object controller, gateways, scheduler, rule server, and
// config file watch loop. Grounded on
// _examples/purpleidea-mgmt/lib/main.go's role as the glue between the CLI
// and the engine proper.
package lib

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/linknx-go/ruled/config"
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/gateway"
	"github.com/linknx-go/ruled/metrics"
	"github.com/linknx-go/ruled/object"
	"github.com/linknx-go/ruled/server"
	"github.com/linknx-go/ruled/util/semaphore"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/linknx-go/ruled/action"
	_ "github.com/linknx-go/ruled/condition"
)

// Run loads configPath, starts the rule server, watches the file for
// changes, serves Prometheus metrics on listen, and blocks until the
// process receives SIGINT/SIGTERM.
func Run(ctx context.Context, configPath, listen string) error {
	logger := log.New(os.Stderr, "ruled: ", log.LstdFlags)
	logf := engine.StdLogf(logger)

	objects := object.NewController()
	scheduler := engine.NewTickerScheduler()
	defer scheduler.Close()

	condCtx := &engine.ConditionContext{Objects: objects, Scheduler: scheduler, Logf: logf}
	actCtx := &engine.ActionContext{
		Objects: objects,
		Gateways: engine.Gateways{
			SMS:   &gateway.Logging{Logf: logf},
			Email: &gateway.Logging{Logf: logf},
			Shell: &gateway.Shell{},
		},
		Logf:       logf,
		Semaphores: semaphore.NewRegistry(),
	}
	srv := server.New(condCtx, actCtx, logf)

	reg := prometheus.NewRegistry()
	m := metrics.Init(reg, listen)
	if err := m.Start(reg); err != nil {
		return err
	}
	defer m.Stop(context.Background())

	watcher, err := config.NewWatcher(configPath)
	if err != nil {
		return err
	}
	defer watcher.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case doc, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := srv.ImportXml(doc); err != nil {
				logf("config reload failed: %v", err)
				continue
			}
			m.SetRulesConfigured(len(srv.RuleIDs()))
			logf("loaded %d rules", len(srv.RuleIDs()))
		case err := <-watcher.Errors:
			logf("config watch error: %v", err)
		case <-sigCh:
			srv.Wait()
			return nil
		case <-ctx.Done():
			srv.Wait()
			return ctx.Err()
		}
	}
}

// Export loads configPath and prints the rule server's export document,
// exercising the parse/serialize round trip without starting the watch
// loop or metrics server.
func Export(configPath string) (string, error) {
	objects := object.NewController()
	scheduler := engine.NewTickerScheduler()
	defer scheduler.Close()

	condCtx := &engine.ConditionContext{Objects: objects, Scheduler: scheduler, Logf: func(string, ...interface{}) {}}
	actCtx := &engine.ActionContext{Objects: objects, Logf: func(string, ...interface{}) {}}
	srv := server.New(condCtx, actCtx, nil)

	f, err := os.Open(configPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := config.Parse(f)
	if err != nil {
		return "", err
	}
	if err := srv.ImportXml(doc); err != nil {
		return "", err
	}

	out := config.NewDocument("config")
	srv.ExportXml(out)
	return config.String(out), nil
}

// Kinds returns the currently registered condition and action type tags,
// sorted, for the CLI's "kinds" subcommand. Loading this package's blank
// imports above (action, condition) is what populates the registries.
func Kinds() (conditions, actions []string) {
	conditions = engine.RegisteredConditions()
	actions = engine.RegisteredActions()
	sort.Strings(conditions)
	sort.Strings(actions)
	return conditions, actions
}

// Inspect loads configPath and dumps its raw parsed element tree, without
// configuring any rules from it. Useful for debugging a document the
// server rejects outright.
func Inspect(configPath string) (string, error) {
	f, err := os.Open(configPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := config.Parse(f)
	if err != nil {
		return "", err
	}
	return config.Dump(doc), nil
}
