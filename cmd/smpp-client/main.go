// Command smpp-client runs a standalone SMPP v3.4 transceiver: it binds to
// an SMSC, submits -msg to -dst_addr after every successful bind when both
// flags are given, and logs deliver_sm traffic until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/guyt101z/vumi-smpp-client/client"
	"github.com/guyt101z/vumi-smpp-client/internal/logging"
	"github.com/guyt101z/vumi-smpp-client/internal/seqalloc"
	"github.com/guyt101z/vumi-smpp-client/internal/store"
	"github.com/guyt101z/vumi-smpp-client/pdu"
	"github.com/guyt101z/vumi-smpp-client/reconnect"
)

const svcName = "smpp-client"

func main() {
	var (
		dstAddr string
		msg     string
		useMem  bool
	)
	flag.StringVar(&dstAddr, "dst_addr", "", "destination address to submit -msg to; if empty, the client only listens")
	flag.StringVar(&msg, "msg", "", "contents of the message to submit to -dst_addr")
	flag.BoolVar(&useMem, "in_memory_store", false, "use an in-process store instead of SMPP_REDIS_URL")
	flag.Parse()

	cfg := client.Config{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s: failed to load configuration: %s\n", svcName, err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout)

	instanceID := uuid.New().String()
	log.Info("starting", "service", svcName, "instance_id", instanceID, "system_id", cfg.SystemID, "host", cfg.Host, "port", cfg.Port)

	var st store.Store
	if useMem {
		st = store.NewMemory()
	} else {
		redisStore, err := store.Connect(cfg.RedisURL, cfg.MultipartBufferTTL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err.Error())
			os.Exit(1)
		}
		defer redisStore.Close()
		st = redisStore
	}

	seq, err := seqalloc.New(cfg.SequenceOffset, cfg.SequenceIncrement)
	if err != nil {
		log.Error("invalid sequence allocator configuration", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	dial := func(ctx context.Context) (net.Conn, error) {
		d := net.Dialer{}
		return d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	}

	sink := client.SinkFuncs{
		Log: log,
		Connect: func(e *client.Engine) {
			log.Info("bound to smsc", "system_id", cfg.SystemID)
			if dstAddr != "" && msg != "" {
				sentSeq := e.SubmitSm(ctx, client.SubmitSmParams{
					SourceAddr:      cfg.SystemID,
					DestinationAddr: dstAddr,
					ShortMessage:    msg,
				})
				log.Info("submitted message", "seq", sentSeq, "dst_addr", dstAddr)
			}
		},
		Disconnect: func() {
			log.Warn("disconnected from smsc")
		},
		SubmitSmResp: func(seq uint32, st pdu.Status, cmdID pdu.CommandID, messageID string) {
			log.Info("submit_sm_resp", "seq", seq, "status", fmt.Sprintf("0x%08X", uint32(st)), "message_id", messageID)
		},
		DeliveryReport: func(dst, src string, fields pdu.DeliveryReceipt) {
			log.Info("delivery_report", "dst_addr", dst, "src_addr", src, "id", fields.Id, "stat", string(fields.Stat))
		},
		DeliverSm: func(dst, src, text string) {
			log.Info("deliver_sm", "dst_addr", dst, "src_addr", src, "text", text)
		},
	}

	supervisor := reconnect.New(cfg, dial, seq, st, sink, log)

	g.Go(func() error {
		return supervisor.Run(ctx)
	})

	g.Go(func() error {
		return stopSignalHandler(ctx, cancel, log)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Error("smpp-client terminated", "error", err.Error())
		os.Exit(1)
	}
}

func stopSignalHandler(ctx context.Context, cancel context.CancelFunc, log logging.Logger) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		log.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}
	return nil
}
