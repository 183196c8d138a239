// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tombee/conductor-httpnodes/internal/config"
	"github.com/tombee/conductor-httpnodes/internal/log"
	"github.com/tombee/conductor-httpnodes/internal/nodes"
	"github.com/tombee/conductor-httpnodes/internal/secrets"
	"github.com/tombee/conductor-httpnodes/internal/tracing"
	"github.com/tombee/conductor-httpnodes/pkg/node"
	pkgsecrets "github.com/tombee/conductor-httpnodes/pkg/secrets"
)

// Runtime holds the collaborators shared by the commands.
type Runtime struct {
	Config      *config.Config
	Logger      *slog.Logger
	Masker      *pkgsecrets.Masker
	Secrets     *secrets.Resolver
	Credentials *secrets.CredentialStore
	Registry    *node.Registry
	Metrics     *node.Metrics
	Gatherer    prometheus.Gatherer

	shutdown    tracing.ShutdownFunc
	prevDefault *slog.Logger
}

// NewRuntime loads the configuration named by --config and wires logging,
// tracing, secret backends and the node registry. Logs go to stderr.
func NewRuntime(ctx context.Context, stderr io.Writer) (*Runtime, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}

	masker := pkgsecrets.NewMasker()
	logCfg := log.ApplyEnv(cfg.Log.Logger(stderr, masker))
	switch {
	case GetVerbose():
		logCfg.Level = "debug"
	case GetQuiet():
		logCfg.Level = "error"
	}
	logger := log.New(logCfg)

	backends, err := secretBackends(cfg)
	if err != nil {
		return nil, NewConfigError("invalid inline credentials", err)
	}
	resolver := secrets.NewResolver(backends...)
	logger.Debug("secret backends ready", slog.Any("backends", resolver.Backends()))

	tcfg := cfg.Tracing
	tcfg.Writer = stderr
	tcfg.ServiceVersion = version
	shutdown, err := tracing.Setup(ctx, tcfg)
	if err != nil {
		return nil, NewConfigError("failed to set up tracing", err)
	}

	httpCfg := cfg.HTTP.Client()
	httpCfg.Logger = log.WithComponent(logger, "httpclient")
	reg, err := nodes.NewRegistry(nodes.Options{HTTP: httpCfg, Masker: masker})
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()

	// Packages without an injected logger, such as credential resolution,
	// log through the default.
	prev := slog.Default()
	slog.SetDefault(logger)

	return &Runtime{
		Config:      cfg,
		Logger:      logger,
		Masker:      masker,
		Secrets:     resolver,
		Credentials: secrets.NewCredentialStore(resolver),
		Registry:    reg,
		Metrics:     node.NewMetrics(promReg),
		Gatherer:    promReg,
		shutdown:    shutdown,
		prevDefault: prev,
	}, nil
}

// Close flushes pending spans and restores the default logger.
func (r *Runtime) Close(ctx context.Context) error {
	if r.prevDefault != nil {
		slog.SetDefault(r.prevDefault)
	}
	if r.shutdown == nil {
		return nil
	}
	return r.shutdown(ctx)
}

func secretBackends(cfg *config.Config) ([]secrets.SecretBackend, error) {
	backends := []secrets.SecretBackend{secrets.NewEnvBackend()}
	if !cfg.Secrets.DisableKeychain {
		backends = append(backends, secrets.NewKeychainBackend())
	}
	if len(cfg.Credentials) > 0 {
		records, err := secrets.ConfigRecords(cfg.Credentials)
		if err != nil {
			return nil, err
		}
		backends = append(backends, secrets.NewConfigBackend(records))
	}
	return backends, nil
}
