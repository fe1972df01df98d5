package client

import (
	"context"
	"time"

	"github.com/guyt101z/vumi-smpp-client/internal/statemachine"
	"github.com/guyt101z/vumi-smpp-client/internal/status"
	"github.com/guyt101z/vumi-smpp-client/pdu"
)

// SubmitSmParams are the caller-supplied fields for one submit_sm. Zero
// values for DestAddrTon/DestAddrNpi mean "use the engine's configured
// default", merging caller fields with engine defaults per spec.md §4.7.
type SubmitSmParams struct {
	ServiceType          string
	SourceAddrTon        int
	SourceAddrNpi        int
	SourceAddr           string
	DestAddrTon          int
	DestAddrNpi          int
	DestinationAddr      string
	EsmClass             pdu.EsmClass
	ProtocolID           int
	PriorityFlag         int
	ScheduleDeliveryTime time.Time
	ValidityPeriod       time.Time
	RegisteredDelivery   pdu.RegisteredDelivery
	ReplaceIfPresentFlag int
	DataCoding           int
	SmDefaultMsgID       int
	ShortMessage         string
	Options              *pdu.Options
}

// SubmitSm sends a submit_sm PDU and pushes one marker onto the unacked
// list. Returns the allocated sequence number, or 0 if the engine is not
// bound.
func (e *Engine) SubmitSm(ctx context.Context, p SubmitSmParams) uint32 {
	if !e.machine.Allow(statemachine.OpSubmitSm) {
		return 0
	}
	destTon, destNpi := p.DestAddrTon, p.DestAddrNpi
	if destTon == 0 {
		destTon = e.cfg.DestAddrTon
	}
	if destNpi == 0 {
		destNpi = e.cfg.DestAddrNpi
	}
	msg := &pdu.SubmitSm{
		ServiceType:          p.ServiceType,
		SourceAddrTon:        p.SourceAddrTon,
		SourceAddrNpi:        p.SourceAddrNpi,
		SourceAddr:           p.SourceAddr,
		DestAddrTon:          destTon,
		DestAddrNpi:          destNpi,
		DestinationAddr:      p.DestinationAddr,
		EsmClass:             p.EsmClass,
		ProtocolID:           p.ProtocolID,
		PriorityFlag:         p.PriorityFlag,
		ScheduleDeliveryTime: p.ScheduleDeliveryTime,
		ValidityPeriod:       p.ValidityPeriod,
		RegisteredDelivery:   p.RegisteredDelivery,
		ReplaceIfPresentFlag: p.ReplaceIfPresentFlag,
		DataCoding:           p.DataCoding,
		SmDefaultMsgID:       p.SmDefaultMsgID,
		ShortMessage:         p.ShortMessage,
		Options:              p.Options,
	}
	seq, err := e.send(msg)
	if err != nil {
		e.sink.OnSendFailure(status.ConnTempFault, err)
		return 0
	}
	if err := e.store.ListPushLeft(ctx, e.keyspace.UnackedKey(), []byte{1}); err != nil {
		e.log.Warn("unacked list push failed", "error", err.Error())
	}
	return seq
}

// SubmitMultiParams are the caller-supplied fields for one submit_multi.
// Destinations carries the typed dest_flag variants directly (see
// pdu.Destination), replacing the source's string-or-struct ambiguity
// with a closed Go type.
type SubmitMultiParams struct {
	ServiceType          string
	SourceAddrTon        int
	SourceAddrNpi        int
	SourceAddr           string
	Destinations         []pdu.Destination
	EsmClass             pdu.EsmClass
	ProtocolID           int
	PriorityFlag         int
	ScheduleDeliveryTime time.Time
	ValidityPeriod       time.Time
	RegisteredDelivery   pdu.RegisteredDelivery
	ReplaceIfPresentFlag int
	DataCoding           int
	SmDefaultMsgID       int
	ShortMessage         string
	Options              *pdu.Options
}

// DestinationSME builds a pdu.Destination for addr using the engine's
// configured default dest_addr_ton/dest_addr_npi, covering the common
// case of a plain SME destination address.
func (e *Engine) DestinationSME(addr string) pdu.Destination {
	return pdu.Destination{
		DestFlag:        pdu.DestFlagSME,
		DestAddrTon:     e.cfg.DestAddrTon,
		DestAddrNpi:     e.cfg.DestAddrNpi,
		DestinationAddr: addr,
	}
}

// SubmitMulti sends a submit_multi PDU. It intentionally does not touch
// the unacked list — spec.md flags this as a probable bug inherited from
// the source, kept as specified (see DESIGN.md).
func (e *Engine) SubmitMulti(ctx context.Context, p SubmitMultiParams) uint32 {
	if !e.machine.Allow(statemachine.OpSubmitMulti) {
		return 0
	}
	msg := &pdu.SubmitMulti{
		ServiceType:          p.ServiceType,
		SourceAddrTon:        p.SourceAddrTon,
		SourceAddrNpi:        p.SourceAddrNpi,
		SourceAddr:           p.SourceAddr,
		Destinations:         p.Destinations,
		EsmClass:             p.EsmClass,
		ProtocolID:           p.ProtocolID,
		PriorityFlag:         p.PriorityFlag,
		ScheduleDeliveryTime: p.ScheduleDeliveryTime,
		ValidityPeriod:       p.ValidityPeriod,
		RegisteredDelivery:   p.RegisteredDelivery,
		ReplaceIfPresentFlag: p.ReplaceIfPresentFlag,
		DataCoding:           p.DataCoding,
		SmDefaultMsgID:       p.SmDefaultMsgID,
		ShortMessage:         p.ShortMessage,
		Options:              p.Options,
	}
	seq, err := e.send(msg)
	if err != nil {
		e.sink.OnSendFailure(status.ConnTempFault, err)
		return 0
	}
	return seq
}

// EnquireLink sends a standalone enquire_link, outside the keep-alive
// ticker's own periodic firing (e.g. for a host-triggered health check).
func (e *Engine) EnquireLink() uint32 {
	if !e.machine.Allow(statemachine.OpEnquireLink) {
		return 0
	}
	seq, err := e.send(&pdu.EnquireLink{})
	if err != nil {
		e.sink.OnSendFailure(status.ConnTempFault, err)
		return 0
	}
	return seq
}

// QuerySm sends a query_sm for messageID, attributed to sourceAddr.
func (e *Engine) QuerySm(messageID, sourceAddr string) uint32 {
	if !e.machine.Allow(statemachine.OpQuerySm) {
		return 0
	}
	seq, err := e.send(&pdu.QuerySm{MessageID: messageID, SourceAddr: sourceAddr})
	if err != nil {
		e.sink.OnSendFailure(status.ConnTempFault, err)
		return 0
	}
	return seq
}
