// Package client implements the SMPP v3.4 Transceiver client engine: the
// socket-owning, single-threaded protocol driver that binds, submits,
// receives, and reassembles multipart traffic for one SMSC connection.
package client

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"unicode/utf16"

	"github.com/guyt101z/vumi-smpp-client/internal/framer"
	"github.com/guyt101z/vumi-smpp-client/internal/keepalive"
	"github.com/guyt101z/vumi-smpp-client/internal/logging"
	"github.com/guyt101z/vumi-smpp-client/internal/multipart"
	"github.com/guyt101z/vumi-smpp-client/internal/seqalloc"
	"github.com/guyt101z/vumi-smpp-client/internal/statemachine"
	"github.com/guyt101z/vumi-smpp-client/internal/status"
	"github.com/guyt101z/vumi-smpp-client/internal/store"
	"github.com/guyt101z/vumi-smpp-client/pdu"
	"github.com/guyt101z/vumi-smpp-client/pkg/errors"
)

const smppInterfaceVersion34 = 0x34

// Engine owns one TCP connection's worth of SMPP protocol state: the
// framer, state machine, sequence allocator, durable store handle,
// multipart reassembler, keep-alive ticker, and the host's Sink. All
// dispatch happens synchronously on the goroutine that calls Run or
// DataReceived, per the single-threaded cooperative model.
type Engine struct {
	conn net.Conn
	cfg  Config

	framer   *framer.Framer
	machine  *statemachine.Machine
	seq      *seqalloc.Allocator
	store    store.Store
	keyspace store.Keyspace
	reasm    *multipart.Reassembler
	ticker   *keepalive.Ticker
	sink     Sink
	log      logging.Logger

	enc *pdu.Encoder
	ctx context.Context
}

// New builds an Engine over conn. seq is shared with the reconnect
// supervisor so sequence numbers survive reconnects; st is the durable
// SessionStore for unacked accounting and multipart buffers.
func New(conn net.Conn, cfg Config, seq *seqalloc.Allocator, st store.Store, sink Sink, log logging.Logger) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	keyspace := store.Keyspace{SystemID: cfg.SystemID, Host: cfg.Host, Port: cfg.Port}
	return &Engine{
		conn:     conn,
		cfg:      cfg,
		framer:   framer.New(cfg.MaxFrameSize),
		machine:  statemachine.New(),
		seq:      seq,
		store:    st,
		keyspace: keyspace,
		reasm:    multipart.New(st, keyspace),
		sink:     sink,
		log:      log,
		enc:      pdu.NewEncoder(conn, seq),
		ctx:      context.Background(),
	}
}

// State reports the engine's current connection state.
func (e *Engine) State() statemachine.State {
	return e.machine.State()
}

// Run drives the engine's read loop until the connection fails or ctx is
// canceled, automatically binding on entry. The returned error is the
// reason the loop stopped; reconnect.Supervisor logs it and dials again
// unless its ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	e.ctx = ctx
	if err := e.connect(); err != nil {
		e.teardown()
		return err
	}

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			e.teardown()
			return ctx.Err()
		default:
		}
		n, err := e.conn.Read(buf)
		if err != nil {
			e.teardown()
			return errors.Wrap(ErrTransport, err)
		}
		if err := e.DataReceived(buf[:n]); err != nil {
			e.teardown()
			return err
		}
	}
}

func (e *Engine) connect() error {
	if err := e.machine.Connect(); err != nil {
		return errors.Wrap(ErrConfig, err)
	}
	bind := &pdu.BindTRx{
		SystemID:         e.cfg.SystemID,
		Password:         e.cfg.Password,
		SystemType:       e.cfg.SystemType,
		InterfaceVersion: smppInterfaceVersion34,
		AddrTon:          e.cfg.DestAddrTon,
		AddrNpi:          e.cfg.DestAddrNpi,
	}
	if _, err := e.send(bind); err != nil {
		return errors.Wrap(ErrTransport, err)
	}
	return nil
}

func (e *Engine) teardown() {
	e.machine.Close()
	if e.ticker != nil {
		e.ticker.Stop()
	}
	e.conn.Close()
	e.sink.OnDisconnect()
}

// Shutdown stops the keep-alive timer, closes the connection and fires
// OnDisconnect. The engine itself never reconnects, but a
// reconnect.Supervisor driving it sees Run return a transport error and
// dials again; only canceling the supervisor's ctx stops reconnection.
func (e *Engine) Shutdown() {
	e.teardown()
}

func (e *Engine) send(p pdu.PDU, opts ...pdu.EncoderOption) (uint32, error) {
	return e.enc.Encode(p, opts...)
}

// DataReceived feeds raw transport bytes to the framer and dispatches
// every complete PDU it yields. It is the single entry point for inbound
// data; Run calls it from the socket read loop, but a host embedding the
// engine directly over its own transport may call it instead.
func (e *Engine) DataReceived(p []byte) error {
	e.framer.Feed(p)
	for {
		raw, ok, err := e.framer.TryPop()
		if err != nil {
			return errors.Wrap(ErrFrame, err)
		}
		if !ok {
			return nil
		}
		header, body, err := pdu.NewDecoder(bytes.NewReader(raw)).Decode()
		if err != nil {
			e.log.Warn("pdu decode error", "error", err.Error())
			continue
		}
		e.dispatch(header, body)
	}
}

func (e *Engine) dispatch(header pdu.Header, body pdu.PDU) {
	fault := status.Classify(header.Status())
	if fault.Class != status.OK {
		e.handleFault(fault, header)
	}

	switch header.CommandID() {
	case pdu.BindTransceiverRespID:
		if resp, ok := body.(*pdu.BindTRxResp); ok {
			e.handleBindResp(header, resp, fault)
		}
	case pdu.SubmitSmRespID:
		if resp, ok := body.(*pdu.SubmitSmResp); ok {
			e.handleSubmitSmResp(header, resp)
		}
	case pdu.SubmitMultiRespID:
		// Fault classification above is the whole contract; submit_multi
		// deliberately does not touch the unacked list (see §9).
	case pdu.DeliverSmID:
		if msg, ok := body.(*pdu.DeliverSm); ok {
			e.handleDeliverSm(header, msg)
		}
	case pdu.EnquireLinkID:
		e.send(&pdu.EnquireLinkResp{}, pdu.EncodeSeq(header.Sequence()), pdu.EncodeStatus(pdu.StatusOK))
	case pdu.EnquireLinkRespID:
		// no-op
	default:
		// Unknown command_id is ignored after classifier dispatch.
	}
}

func (e *Engine) handleFault(fault status.Fault, header pdu.Header) {
	handler := e.cfg.FaultHandlers[fault.Class]
	if handler != nil {
		handler(header)
		return
	}
	e.log.Warn("smpp fault", "class", fault.Class.String(), "status", fmt.Sprintf("0x%08X", uint32(fault.Status)), "message", fault.Msg)
}

func (e *Engine) handleBindResp(header pdu.Header, resp *pdu.BindTRxResp, fault status.Fault) {
	if header.Status() != pdu.StatusOK {
		e.sink.OnSendFailure(fault.Class, newProtocolFault(fault))
		return
	}
	if err := e.machine.Bind(); err != nil {
		e.log.Error("bind accepted in unexpected state", "error", err.Error())
		return
	}
	e.ticker = keepalive.New(e.cfg.enquireLinkInterval(), func() {
		e.send(&pdu.EnquireLink{})
	})
	e.sink.OnConnect(e)
}

func (e *Engine) handleSubmitSmResp(header pdu.Header, resp *pdu.SubmitSmResp) {
	if _, _, err := e.store.ListPopLeft(e.ctx, e.keyspace.UnackedKey()); err != nil {
		e.log.Warn("unacked list pop failed", "error", err.Error())
	}
	e.sink.OnSubmitSmResp(header.Sequence(), header.Status(), header.CommandID(), resp.MessageID)
}

func (e *Engine) handleDeliverSm(header pdu.Header, msg *pdu.DeliverSm) {
	e.send(msg.Response(""), pdu.EncodeSeq(header.Sequence()), pdu.EncodeStatus(pdu.StatusOK))

	if receipt, err := pdu.ParseDeliveryReceipt(msg.ShortMessage); err == nil {
		e.sink.OnDeliveryReport(msg.DestinationAddr, msg.SourceAddr, *receipt)
		return
	}

	text, complete, handled, err := e.reasm.Add(e.ctx, msg.SourceAddr, msg.DestinationAddr, msg.EsmClass, []byte(msg.ShortMessage), msg.Options)
	if err != nil {
		e.log.Error("multipart reassembly failed", "error", err.Error())
		return
	}
	if handled {
		if !complete {
			return
		}
		e.sink.OnDeliverSm(msg.DestinationAddr, msg.SourceAddr, decodeText(e.log, msg.DataCoding, []byte(text)))
		return
	}

	e.sink.OnDeliverSm(msg.DestinationAddr, msg.SourceAddr, decodeText(e.log, msg.DataCoding, []byte(msg.ShortMessage)))
}

// decodeText decodes short_message bytes per data_coding: 1 is ASCII, 3
// is Latin-1 (ISO-8859-1), 8 is UTF-16BE. Any other value is passed
// through raw with a warning, per spec.md §4.7.
func decodeText(log logging.Logger, dataCoding int, raw []byte) string {
	switch dataCoding {
	case 1:
		return string(raw)
	case 3:
		runes := make([]rune, len(raw))
		for i, b := range raw {
			runes[i] = rune(b)
		}
		return string(runes)
	case 8:
		if len(raw)%2 != 0 {
			log.Warn("odd-length utf16be short_message, dropping trailing byte", "len", len(raw))
			raw = raw[:len(raw)-1]
		}
		units := make([]uint16, len(raw)/2)
		for i := range units {
			units[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
		}
		return string(utf16.Decode(units))
	default:
		log.Warn("unknown data_coding, passing short_message raw", "data_coding", dataCoding)
		return string(raw)
	}
}
