package client

import (
	"github.com/guyt101z/vumi-smpp-client/internal/logging"
	"github.com/guyt101z/vumi-smpp-client/internal/status"
	"github.com/guyt101z/vumi-smpp-client/pdu"
)

// Sink is the host-provided event interface, replacing a five-callback
// setter API with one typed object.
type Sink interface {
	OnConnect(e *Engine)
	OnDisconnect()
	OnSubmitSmResp(seq uint32, status pdu.Status, cmdID pdu.CommandID, messageID string)
	OnDeliveryReport(dst, src string, fields pdu.DeliveryReceipt)
	OnDeliverSm(dst, src, text string)
	OnSendFailure(kind status.Class, detail error)
}

// NopSink implements Sink with no-ops, so a host can embed it and
// override only the methods it cares about.
type NopSink struct{}

func (NopSink) OnConnect(*Engine)                                                 {}
func (NopSink) OnDisconnect()                                                     {}
func (NopSink) OnSubmitSmResp(seq uint32, status pdu.Status, cmdID pdu.CommandID, messageID string) {
}
func (NopSink) OnDeliveryReport(dst, src string, fields pdu.DeliveryReceipt) {}
func (NopSink) OnDeliverSm(dst, src, text string)                           {}
func (NopSink) OnSendFailure(kind status.Class, detail error)               {}

// SinkFuncs adapts a struct of optional function fields to Sink; a nil
// field behaves like NopSink's corresponding method, except that a nil
// SendFailure logs the failure at Warn via Log when Log is set.
type SinkFuncs struct {
	Log logging.Logger

	Connect        func(e *Engine)
	Disconnect     func()
	SubmitSmResp   func(seq uint32, status pdu.Status, cmdID pdu.CommandID, messageID string)
	DeliveryReport func(dst, src string, fields pdu.DeliveryReceipt)
	DeliverSm      func(dst, src, text string)
	SendFailure    func(kind status.Class, detail error)
}

func (s SinkFuncs) OnConnect(e *Engine) {
	if s.Connect != nil {
		s.Connect(e)
	}
}

func (s SinkFuncs) OnDisconnect() {
	if s.Disconnect != nil {
		s.Disconnect()
	}
}

func (s SinkFuncs) OnSubmitSmResp(seq uint32, st pdu.Status, cmdID pdu.CommandID, messageID string) {
	if s.SubmitSmResp != nil {
		s.SubmitSmResp(seq, st, cmdID, messageID)
	}
}

func (s SinkFuncs) OnDeliveryReport(dst, src string, fields pdu.DeliveryReceipt) {
	if s.DeliveryReport != nil {
		s.DeliveryReport(dst, src, fields)
	}
}

func (s SinkFuncs) OnDeliverSm(dst, src, text string) {
	if s.DeliverSm != nil {
		s.DeliverSm(dst, src, text)
	}
}

func (s SinkFuncs) OnSendFailure(kind status.Class, detail error) {
	if s.SendFailure != nil {
		s.SendFailure(kind, detail)
		return
	}
	if s.Log != nil {
		s.Log.Warn("send failure", "class", kind.String(), "error", detail.Error())
	}
}
