// vi: sw=4 ts=4:

/*

	Mnemonic:	tegu-mrt
	Abstract:	The control-plane process entry point: parses flags, wires the
				OF-DB, routing/admission/orchestrator stack, the data-plane
				transport, the network monitor and the MSDP peer gossip
				together, then serves the northbound REST API until
				interrupted. Mirrors main/tegu.go's bring-up order -- managers
				initialised first, long-running goroutines started last, HTTP
				turned on only once everything else is running -- modernised
				with github.com/spf13/cobra for flag parsing instead of the
				stdlib flag package, following malbeclabs-doublezero's use of
				cobra for its own daemon entry points.
	Date:		2026

*/

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/apex/log"
	apexcli "github.com/apex/log/handlers/cli"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/esdaniels/tegu-mrt/admission"
	"github.com/esdaniels/tegu-mrt/dataplane"
	"github.com/esdaniels/tegu-mrt/monitor"
	"github.com/esdaniels/tegu-mrt/msdp"
	"github.com/esdaniels/tegu-mrt/ofdb"
	"github.com/esdaniels/tegu-mrt/orchestrator"
	"github.com/esdaniels/tegu-mrt/restapi"
)

var sheep = log.WithField("component", "main")

type options struct {
	apiAddr       string
	metricsAddr   string
	agentAddr     string
	probeMode     string
	probeInterval time.Duration
	msdpAddr      string
	msdpPeers     []string
	envFile       string
}

func main() {
	log.SetHandler(apexcli.Default)

	opts := &options{}

	root := &cobra.Command{
		Use:   "tegu-mrt",
		Short: "Multicast real-time control plane for MQTT-over-SDN",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.apiAddr, "api-addr", ":29444", "listen address for the northbound REST API")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", ":9090", "listen address for the Prometheus /metrics endpoint")
	flags.StringVar(&opts.agentAddr, "agent-addr", "", "host:port of the data-plane agent; when empty, commands are logged only")
	flags.StringVar(&opts.probeMode, "probe-mode", "sim", "link probe mechanism: sim or icmp")
	flags.DurationVar(&opts.probeInterval, "probe-interval", monitor.DefaultInterval, "network monitor sampling interval")
	flags.StringVar(&opts.msdpAddr, "msdp-addr", fmt.Sprintf(":%d", msdp.DefaultPort), "listen address for inbound MSDP peer connections")
	flags.StringSliceVar(&opts.msdpPeers, "msdp-peers", nil, "comma-separated host[:port] list of peer controllers to gossip SA messages to")
	flags.StringVar(&opts.envFile, "env-file", "", "optional .env file to load before startup (config, not part of the wire contract)")

	if err := root.Execute(); err != nil {
		sheep.WithError(err).Fatal("tegu-mrt exited with an error")
	}
}

func run(ctx context.Context, opts *options) error {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			sheep.WithError(err).Warn("could not load env file, continuing with process environment")
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := ofdb.New()

	transport, closeTransport := buildTransport(opts.agentAddr)
	defer closeTransport()
	programmer := dataplane.New(transport)

	orch := orchestrator.New(db, programmer)

	registry := prometheus.NewRegistry()
	for _, c := range admission.Registry() {
		registry.MustRegister(c)
	}

	sampler, err := buildSampler(opts.probeMode, db)
	if err != nil {
		return err
	}
	mon := monitor.New(db, sampler, clockwork.NewRealClock(), opts.probeInterval)
	go mon.Run(ctx)

	sourceTable := msdp.NewSourceTable()
	msdpServer := msdp.NewServer(opts.msdpAddr, sourceTable)
	go func() {
		if err := msdpServer.ListenAndServe(ctx, opts.msdpAddr); err != nil {
			sheep.WithError(err).Error("MSDP listener stopped")
		}
	}()
	msdpClient := msdp.NewClient(opts.msdpAddr, opts.msdpPeers)

	metricsSrv := &http.Server{Addr: opts.metricsAddr, Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{})}
	go func() {
		sheep.WithField("addr", opts.metricsAddr).Info("metrics listener starting")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sheep.WithError(err).Error("metrics listener stopped")
		}
	}()

	apiSrv := &http.Server{Addr: opts.apiAddr, Handler: restapi.New(orch, msdpClient).Handler()}
	go func() {
		sheep.WithField("addr", opts.apiAddr).Info("REST API listener starting")
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sheep.WithError(err).Error("REST API listener stopped")
		}
	}()

	sheep.Info("tegu-mrt started")
	<-ctx.Done()
	sheep.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)

	return nil
}

// buildTransport dials the external data-plane agent if an address was
// given; otherwise commands are written to stderr so a development run is
// still observable without a real agent process listening.
func buildTransport(agentAddr string) (dataplane.Transport, func()) {
	if agentAddr == "" {
		sheep.Warn("no --agent-addr given; data-plane commands will be logged to stderr only")
		return dataplane.NewWriterTransport(os.Stderr), func() {}
	}

	conn, err := net.Dial("tcp", agentAddr)
	if err != nil {
		sheep.WithField("agent", agentAddr).WithError(err).Warn("could not connect to data-plane agent, falling back to stderr logging")
		return dataplane.NewWriterTransport(os.Stderr), func() {}
	}
	sheep.WithField("agent", agentAddr).Info("connected to data-plane agent")
	return dataplane.NewWriterTransport(conn), func() { _ = conn.Close() }
}

func buildSampler(mode string, db *ofdb.OFDB) (monitor.Sampler, error) {
	switch strings.ToLower(mode) {
	case "", "sim":
		return monitor.NewSimSampler(time.Now().UnixNano()), nil
	case "icmp":
		return monitor.NewICMPSampler(db), nil
	default:
		return nil, fmt.Errorf("tegu-mrt: unknown --probe-mode %q (want sim or icmp)", mode)
	}
}
