package client

import (
	"time"

	"github.com/guyt101z/vumi-smpp-client/internal/keepalive"
	"github.com/guyt101z/vumi-smpp-client/internal/status"
	"github.com/guyt101z/vumi-smpp-client/pdu"
)

// Config is the immutable-per-engine configuration, loaded from the
// environment with caarlos0/env when running as a standalone process
// (see cmd/smpp-client) or constructed directly by an embedding host.
type Config struct {
	SystemID   string `env:"SMPP_SYSTEM_ID"   envDefault:""`
	Password   string `env:"SMPP_PASSWORD"    envDefault:""`
	SystemType string `env:"SMPP_SYSTEM_TYPE" envDefault:""`
	Host       string `env:"SMPP_HOST"        envDefault:"localhost"`
	Port       int    `env:"SMPP_PORT"        envDefault:"2775"`

	SequenceIncrement uint32 `env:"SMPP_SEQUENCE_INCREMENT" envDefault:"1"`
	SequenceOffset    uint32 `env:"SMPP_SEQUENCE_OFFSET"    envDefault:"1"`

	DestAddrTon int `env:"SMPP_DEST_ADDR_TON" envDefault:"0"`
	DestAddrNpi int `env:"SMPP_DEST_ADDR_NPI" envDefault:"0"`

	EnquireLinkInterval time.Duration `env:"SMPP_ENQUIRE_LINK_INTERVAL" envDefault:"55s"`
	ReconnectInitial    time.Duration `env:"SMPP_RECONNECT_INITIAL"     envDefault:"30s"`
	ReconnectMax        time.Duration `env:"SMPP_RECONNECT_MAX"         envDefault:"45s"`

	MaxFrameSize uint32 `env:"SMPP_MAX_FRAME_SIZE" envDefault:"65536"`

	MultipartBufferTTL time.Duration `env:"SMPP_MULTIPART_BUFFER_TTL" envDefault:"24h"`

	RedisURL string `env:"SMPP_REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// FaultHandlers are installed per fault class; a class without an
	// installed handler falls back to logging at Warn.
	FaultHandlers map[status.Class]func(pdu.Header)
}

func (c Config) enquireLinkInterval() time.Duration {
	if c.EnquireLinkInterval <= 0 {
		return keepalive.DefaultInterval
	}
	return c.EnquireLinkInterval
}
