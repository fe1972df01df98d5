package client_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/guyt101z/vumi-smpp-client/client"
	"github.com/guyt101z/vumi-smpp-client/internal/seqalloc"
	"github.com/guyt101z/vumi-smpp-client/internal/status"
	"github.com/guyt101z/vumi-smpp-client/internal/store"
	"github.com/guyt101z/vumi-smpp-client/pdu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSink struct {
	client.NopSink
	mu sync.Mutex

	connected     chan *client.Engine
	submitResps   []submitResp
	deliverySMs   []deliverySM
	deliveryRpts  []deliveryReport
	failures      []failure
}

type submitResp struct {
	seq       uint32
	status    pdu.Status
	cmdID     pdu.CommandID
	messageID string
}

type deliverySM struct {
	dst, src, text string
}

type deliveryReport struct {
	dst, src string
	fields   pdu.DeliveryReceipt
}

type failure struct {
	kind   status.Class
	detail error
}

func newCapturingSink() *capturingSink {
	return &capturingSink{connected: make(chan *client.Engine, 1)}
}

func (s *capturingSink) OnConnect(e *client.Engine) {
	s.connected <- e
}

func (s *capturingSink) OnSubmitSmResp(seq uint32, st pdu.Status, cmdID pdu.CommandID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitResps = append(s.submitResps, submitResp{seq, st, cmdID, messageID})
}

func (s *capturingSink) OnDeliverSm(dst, src, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliverySMs = append(s.deliverySMs, deliverySM{dst, src, text})
}

func (s *capturingSink) OnDeliveryReport(dst, src string, fields pdu.DeliveryReceipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveryRpts = append(s.deliveryRpts, deliveryReport{dst, src, fields})
}

func (s *capturingSink) OnSendFailure(kind status.Class, detail error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{kind, detail})
}

func (s *capturingSink) snapshotSubmitResps() []submitResp {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]submitResp, len(s.submitResps))
	copy(out, s.submitResps)
	return out
}

func (s *capturingSink) snapshotDeliverySMs() []deliverySM {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]deliverySM, len(s.deliverySMs))
	copy(out, s.deliverySMs)
	return out
}

func (s *capturingSink) snapshotDeliveryReports() []deliveryReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]deliveryReport, len(s.deliveryRpts))
	copy(out, s.deliveryRpts)
	return out
}

func testConfig() client.Config {
	return client.Config{
		SystemID:     "vumi",
		Password:     "secret",
		Host:         "smsc.example.com",
		Port:         2775,
		MaxFrameSize: 65536,
	}
}

// harness wires an Engine to one end of a net.Pipe, with the test acting
// as the SMSC on the other end.
type harness struct {
	t      *testing.T
	engine *client.Engine
	sink   *capturingSink
	peer   net.Conn
	store  *store.Memory
	runErr chan error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clientConn, peerConn := net.Pipe()
	seq, err := seqalloc.New(1, 1)
	require.NoError(t, err)
	mem := store.NewMemory()
	sink := newCapturingSink()
	eng := client.New(clientConn, testConfig(), seq, mem, sink, nil)

	h := &harness{t: t, engine: eng, sink: sink, peer: peerConn, store: mem, runErr: make(chan error, 1)}
	go func() {
		h.runErr <- eng.Run(context.Background())
	}()
	return h
}

// bind reads the bind_transceiver from the engine and replies ok.
func (h *harness) bind() *client.Engine {
	h.t.Helper()
	header, _, err := pdu.NewDecoder(h.peer).Decode()
	require.NoError(h.t, err)
	require.Equal(h.t, pdu.BindTransceiverID, header.CommandID())

	enc := pdu.NewEncoder(h.peer, pdu.NewSequencer(1))
	_, err = enc.Encode(&pdu.BindTRxResp{SystemID: "smsc"}, pdu.EncodeSeq(header.Sequence()), pdu.EncodeStatus(pdu.StatusOK))
	require.NoError(h.t, err)

	select {
	case e := <-h.sink.connected:
		return e
	case <-time.After(time.Second):
		h.t.Fatal("timed out waiting for OnConnect")
		return nil
	}
}

func (h *harness) readNext() (pdu.Header, pdu.PDU) {
	h.t.Helper()
	header, body, err := pdu.NewDecoder(h.peer).Decode()
	require.NoError(h.t, err)
	return header, body
}

func TestBindHappyPath(t *testing.T) {
	h := newHarness(t)
	h.bind()
	assert.Equal(t, "BOUND_TRX", h.engine.State().String())
}

func TestSubmitAndResponseClearsUnacked(t *testing.T) {
	h := newHarness(t)
	h.bind()

	go func() {
		h.engine.SubmitSm(context.Background(), client.SubmitSmParams{
			SourceAddr:      "2020",
			DestinationAddr: "27820000000",
			ShortMessage:    "hi",
		})
	}()

	header, body := h.readNext()
	require.Equal(t, pdu.SubmitSmID, header.CommandID())
	_, ok := body.(*pdu.SubmitSm)
	require.True(t, ok)

	n, err := h.store.ListLen(context.Background(), "vumi@smsc.example.com:2775#unacked")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	enc := pdu.NewEncoder(h.peer, pdu.NewSequencer(1))
	_, err = enc.Encode(&pdu.SubmitSmResp{MessageID: "ABC123"}, pdu.EncodeSeq(header.Sequence()), pdu.EncodeStatus(pdu.StatusOK))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(h.sink.snapshotSubmitResps()) == 1
	}, time.Second, time.Millisecond)

	resp := h.sink.snapshotSubmitResps()[0]
	assert.Equal(t, header.Sequence(), resp.seq)
	assert.Equal(t, pdu.StatusOK, resp.status)
	assert.Equal(t, "ABC123", resp.messageID)

	n, err = h.store.ListLen(context.Background(), "vumi@smsc.example.com:2775#unacked")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDeliveryReceipt(t *testing.T) {
	h := newHarness(t)
	h.bind()

	enc := pdu.NewEncoder(h.peer, pdu.NewSequencer(1))
	_, err := enc.Encode(&pdu.DeliverSm{
		SourceAddr:      "27820000000",
		DestinationAddr: "2020",
		ShortMessage:    "id:ABC123 sub:001 dlvrd:001 submit date:1301010000 done date:1301010005 stat:DELIVRD err:000 Text:hello",
	})
	require.NoError(t, err)

	_, _, err = pdu.NewDecoder(h.peer).Decode()
	require.NoError(t, err) // deliver_sm_resp

	assert.Eventually(t, func() bool {
		return len(h.sink.snapshotDeliveryReports()) == 1
	}, time.Second, time.Millisecond)

	rpt := h.sink.snapshotDeliveryReports()[0]
	assert.Equal(t, "ABC123", rpt.fields.Id)
	assert.Equal(t, pdu.DelStatDelivered, rpt.fields.Stat)
}

func udhFragment(ref, total, seq int, body string) string {
	udh := []byte{5, 0, 3, byte(ref), byte(total), byte(seq)}
	return string(append(udh, []byte(body)...))
}

func TestMultipartOutOfOrder(t *testing.T) {
	h := newHarness(t)
	h.bind()

	esm := pdu.EsmClass{Feature: pdu.UDHIEsmFeat}
	enc := pdu.NewEncoder(h.peer, pdu.NewSequencer(1))

	_, err := enc.Encode(&pdu.DeliverSm{
		SourceAddr:      "27820000000",
		DestinationAddr: "2020",
		EsmClass:        esm,
		ShortMessage:    udhFragment(5, 2, 2, "world"),
	})
	require.NoError(t, err)
	_, _, err = pdu.NewDecoder(h.peer).Decode()
	require.NoError(t, err)

	assert.Empty(t, h.sink.snapshotDeliverySMs())

	_, err = enc.Encode(&pdu.DeliverSm{
		SourceAddr:      "27820000000",
		DestinationAddr: "2020",
		EsmClass:        esm,
		ShortMessage:    udhFragment(5, 2, 1, "hello "),
	})
	require.NoError(t, err)
	_, _, err = pdu.NewDecoder(h.peer).Decode()
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(h.sink.snapshotDeliverySMs()) == 1
	}, time.Second, time.Millisecond)

	msg := h.sink.snapshotDeliverySMs()[0]
	assert.Equal(t, "hello world", msg.text)
}

func TestThrottleStillFiresSubmitSmResp(t *testing.T) {
	h := newHarness(t)
	h.bind()

	go func() {
		h.engine.SubmitSm(context.Background(), client.SubmitSmParams{
			SourceAddr:      "2020",
			DestinationAddr: "27820000000",
			ShortMessage:    "hi",
		})
	}()

	header, _ := h.readNext()
	enc := pdu.NewEncoder(h.peer, pdu.NewSequencer(1))
	_, err := enc.Encode(&pdu.SubmitSmResp{MessageID: "X"}, pdu.EncodeSeq(header.Sequence()), pdu.EncodeStatus(pdu.StatusThrottled))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(h.sink.snapshotSubmitResps()) == 1
	}, time.Second, time.Millisecond)

	resp := h.sink.snapshotSubmitResps()[0]
	assert.Equal(t, pdu.StatusThrottled, resp.status)
}

func TestReconnectPreservesSequence(t *testing.T) {
	seq, err := seqalloc.New(1, 1)
	require.NoError(t, err)
	mem := store.NewMemory()

	clientConn1, peerConn1 := net.Pipe()
	sink1 := newCapturingSink()
	eng1 := client.New(clientConn1, testConfig(), seq, mem, sink1, nil)
	go eng1.Run(context.Background())

	header, _, err := pdu.NewDecoder(peerConn1).Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), header.Sequence())

	enc := pdu.NewEncoder(peerConn1, pdu.NewSequencer(1))
	_, err = enc.Encode(&pdu.BindTRxResp{SystemID: "smsc"}, pdu.EncodeSeq(header.Sequence()), pdu.EncodeStatus(pdu.StatusOK))
	require.NoError(t, err)
	<-sink1.connected

	go eng1.SubmitSm(context.Background(), client.SubmitSmParams{SourceAddr: "a", DestinationAddr: "b", ShortMessage: "x"})
	subHeader, _, err := pdu.NewDecoder(peerConn1).Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), subHeader.Sequence())

	eng1.Shutdown()
	peerConn1.Close()

	clientConn2, peerConn2 := net.Pipe()
	sink2 := newCapturingSink()
	eng2 := client.New(clientConn2, testConfig(), seq, mem, sink2, nil)
	go eng2.Run(context.Background())

	header2, _, err := pdu.NewDecoder(peerConn2).Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), header2.Sequence())
}
