package pdu

import (
	"fmt"
	"time"

	smpptime "github.com/guyt101z/vumi-smpp-client/smpptime"
)

// DestFlag identifies the shape of a SubmitMulti destination entry.
const (
	// DestFlagSME marks an entry as an individual SME address.
	DestFlagSME = 1
	// DestFlagDistList marks an entry as a pre-defined distribution list name.
	DestFlagDistList = 2
)

// Destination is a single entry of submit_multi's dest_address list. Set
// DistListName for a DestFlagDistList entry, or DestAddrTon/DestAddrNpi/
// DestinationAddr for a DestFlagSME entry.
type Destination struct {
	DestFlag        int
	DestAddrTon     int
	DestAddrNpi     int
	DestinationAddr string
	DistListName    string
}

func (d Destination) marshalBinary() ([]byte, error) {
	switch d.DestFlag {
	case DestFlagSME:
		out := []byte{byte(DestFlagSME), byte(d.DestAddrTon), byte(d.DestAddrNpi)}
		return append(out, append([]byte(d.DestinationAddr), 0)...), nil
	case DestFlagDistList:
		out := []byte{byte(DestFlagDistList)}
		return append(out, append([]byte(d.DistListName), 0)...), nil
	default:
		return nil, fmt.Errorf("smpp/pdu: invalid dest_flag %d", d.DestFlag)
	}
}

func unmarshalDestination(buf *pduReader) (Destination, error) {
	d := Destination{}
	b, err := buf.ReadByte()
	if err != nil {
		return d, fmt.Errorf("smpp/pdu: decoding dest_flag %s", err)
	}
	d.DestFlag = int(b)
	switch d.DestFlag {
	case DestFlagSME:
		b, err := buf.ReadByte()
		if err != nil {
			return d, fmt.Errorf("smpp/pdu: decoding dest_addr_ton %s", err)
		}
		d.DestAddrTon = int(b)
		b, err = buf.ReadByte()
		if err != nil {
			return d, fmt.Errorf("smpp/pdu: decoding dest_addr_npi %s", err)
		}
		d.DestAddrNpi = int(b)
		res, err := buf.ReadCString(21)
		if err != nil {
			return d, fmt.Errorf("smpp/pdu: decoding destination_addr %s", err)
		}
		d.DestinationAddr = string(res)
	case DestFlagDistList:
		res, err := buf.ReadCString(21)
		if err != nil {
			return d, fmt.Errorf("smpp/pdu: decoding dl_name %s", err)
		}
		d.DistListName = string(res)
	default:
		return d, fmt.Errorf("smpp/pdu: invalid dest_flag %d", d.DestFlag)
	}
	return d, nil
}

// UnsuccessSme reports the outcome of a single destination in a
// submit_multi_resp when that destination was not accepted.
type UnsuccessSme struct {
	DestAddrTon     int
	DestAddrNpi     int
	DestinationAddr string
	ErrorStatusCode Status
}

func (u UnsuccessSme) marshalBinary() []byte {
	out := []byte{byte(u.DestAddrTon), byte(u.DestAddrNpi)}
	out = append(out, append([]byte(u.DestinationAddr), 0)...)
	status := make([]byte, 4)
	status[0] = byte(u.ErrorStatusCode >> 24)
	status[1] = byte(u.ErrorStatusCode >> 16)
	status[2] = byte(u.ErrorStatusCode >> 8)
	status[3] = byte(u.ErrorStatusCode)
	return append(out, status...)
}

func unmarshalUnsuccessSme(buf *pduReader) (UnsuccessSme, error) {
	u := UnsuccessSme{}
	b, err := buf.ReadByte()
	if err != nil {
		return u, fmt.Errorf("smpp/pdu: decoding dest_addr_ton %s", err)
	}
	u.DestAddrTon = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return u, fmt.Errorf("smpp/pdu: decoding dest_addr_npi %s", err)
	}
	u.DestAddrNpi = int(b)
	res, err := buf.ReadCString(21)
	if err != nil {
		return u, fmt.Errorf("smpp/pdu: decoding destination_addr %s", err)
	}
	u.DestinationAddr = string(res)
	status := make([]byte, 4)
	for i := range status {
		b, err := buf.ReadByte()
		if err != nil {
			return u, fmt.Errorf("smpp/pdu: decoding error_status_code %s", err)
		}
		status[i] = b
	}
	u.ErrorStatusCode = Status(uint32(status[0])<<24 | uint32(status[1])<<16 | uint32(status[2])<<8 | uint32(status[3]))
	return u, nil
}

// SubmitMulti submits a short message to multiple recipients or
// distribution lists in a single PDU.
type SubmitMulti struct {
	ServiceType          string
	SourceAddrTon        int
	SourceAddrNpi        int
	SourceAddr           string
	Destinations         []Destination
	EsmClass             EsmClass
	ProtocolID           int
	PriorityFlag         int
	ScheduleDeliveryTime time.Time
	ValidityPeriod       time.Time
	RegisteredDelivery   RegisteredDelivery
	ReplaceIfPresentFlag int
	DataCoding           int
	SmDefaultMsgID       int
	ShortMessage         string
	Options              *Options
}

// CommandID implements pdu.PDU interface.
func (p SubmitMulti) CommandID() CommandID {
	return SubmitMultiID
}

// Response creates new SubmitMultiResp for this request.
func (p SubmitMulti) Response(msgID string) *SubmitMultiResp {
	return &SubmitMultiResp{
		MessageID: msgID,
	}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p SubmitMulti) MarshalBinary() ([]byte, error) {
	out := append(
		[]byte(p.ServiceType),
		0,
		byte(p.SourceAddrTon),
		byte(p.SourceAddrNpi),
	)
	out = append(out, append([]byte(p.SourceAddr), 0)...)
	if len(p.Destinations) > 0xFF {
		return nil, fmt.Errorf("smpp/pdu: too many destinations: %d", len(p.Destinations))
	}
	out = append(out, byte(len(p.Destinations)))
	for _, d := range p.Destinations {
		db, err := d.marshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, db...)
	}
	out = append(out, p.EsmClass.Byte(), byte(p.ProtocolID), byte(p.PriorityFlag))
	tm, err := writeTime(smpptime.Absolute, p.ScheduleDeliveryTime)
	if err != nil {
		return nil, err
	}
	out = append(out, tm...)
	tm, err = writeTime(smpptime.Absolute, p.ValidityPeriod)
	if err != nil {
		return nil, err
	}
	out = append(out, tm...)
	l := len(p.ShortMessage)
	out = append(out, p.RegisteredDelivery.Byte(), byte(p.ReplaceIfPresentFlag), byte(p.DataCoding), byte(p.SmDefaultMsgID), byte(l))
	if l > 0 {
		out = append(out, []byte(p.ShortMessage)...)
	}
	if p.Options == nil {
		return out, nil
	}
	opts, err := p.Options.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(out, opts...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *SubmitMulti) UnmarshalBinary(body []byte) error {
	buf := newBuffer(body)
	res, err := buf.ReadCString(6)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding service_type %s", err)
	}
	p.ServiceType = string(res)
	b, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_ton %s", err)
	}
	p.SourceAddrTon = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_npi %s", err)
	}
	p.SourceAddrNpi = int(b)
	res, err = buf.ReadCString(21)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr %s", err)
	}
	p.SourceAddr = string(res)
	n, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding number_of_dests %s", err)
	}
	p.Destinations = make([]Destination, 0, n)
	for i := 0; i < int(n); i++ {
		d, err := unmarshalDestination(buf)
		if err != nil {
			return err
		}
		p.Destinations = append(p.Destinations, d)
	}
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding esm_class %s", err)
	}
	p.EsmClass = ParseEsmClass(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding protocol_id %s", err)
	}
	p.ProtocolID = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding priority_flag %s", err)
	}
	p.PriorityFlag = int(b)
	res, err = buf.ReadCString(17)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding schedule_delivery_time %s", err)
	}
	t, err := smpptime.Parse(res)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding schedule_delivery_time %s", err)
	}
	p.ScheduleDeliveryTime = t
	res, err = buf.ReadCString(17)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding validity_period %s", err)
	}
	t, err = smpptime.Parse(res)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding validity_period %s", err)
	}
	p.ValidityPeriod = t
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding registered_delivery %s", err)
	}
	p.RegisteredDelivery = ParseRegisteredDelivery(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding replace_if_present_flag %s", err)
	}
	p.ReplaceIfPresentFlag = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding data_coding %s", err)
	}
	p.DataCoding = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding sm_default_msg_id %s", err)
	}
	p.SmDefaultMsgID = int(b)
	sm, err := buf.ReadString(254)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding short_message %s", err)
	}
	p.ShortMessage = string(sm)
	if buf.Len() == 0 {
		return nil
	}
	if p.Options == nil {
		p.Options = NewOptions()
	}
	return p.Options.UnmarshalBinary(buf.Bytes())
}

// SubmitMultiResp reports the outcome of a submit_multi request, including
// the list of destinations that were not accepted.
type SubmitMultiResp struct {
	MessageID     string
	UnsuccessSmes []UnsuccessSme
	Options       *Options
}

// CommandID implements pdu.PDU interface.
func (p SubmitMultiResp) CommandID() CommandID {
	return SubmitMultiRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p SubmitMultiResp) MarshalBinary() ([]byte, error) {
	out := append([]byte(p.MessageID), 0)
	if len(p.UnsuccessSmes) > 0xFF {
		return nil, fmt.Errorf("smpp/pdu: too many unsuccess_smes: %d", len(p.UnsuccessSmes))
	}
	out = append(out, byte(len(p.UnsuccessSmes)))
	for _, u := range p.UnsuccessSmes {
		out = append(out, u.marshalBinary()...)
	}
	if p.Options == nil {
		return out, nil
	}
	opts, err := p.Options.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(out, opts...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *SubmitMultiResp) UnmarshalBinary(body []byte) error {
	n := -1
	for i := 0; i < len(body); i++ {
		if body[i] == 0 {
			n = i + 1
			break
		}
	}
	if n < 0 {
		return fmt.Errorf("smpp/pdu: message_id c string is not terminated")
	}
	p.MessageID = string(body[:n-1])
	buf := newBuffer(body[n:])
	numUnsuccess, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding no_unsuccess %s", err)
	}
	p.UnsuccessSmes = make([]UnsuccessSme, 0, numUnsuccess)
	for i := 0; i < int(numUnsuccess); i++ {
		u, err := unmarshalUnsuccessSme(buf)
		if err != nil {
			return err
		}
		p.UnsuccessSmes = append(p.UnsuccessSmes, u)
	}
	if buf.Len() == 0 {
		return nil
	}
	p.Options = NewOptions()
	return p.Options.UnmarshalBinary(buf.Bytes())
}
