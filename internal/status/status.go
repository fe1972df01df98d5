// Package status classifies SMPP command_status values into the six fault
// classes the client engine reacts to, and carries the human readable
// message for each status the way session.go's toError used to.
package status

import (
	"fmt"

	"github.com/guyt101z/vumi-smpp-client/pdu"
)

// Class is one of the six fault classes a command_status maps to.
type Class int

const (
	// OK indicates the request succeeded, no fault.
	OK Class = iota
	// MessPermFault means this specific message/request is permanently
	// rejected; retrying the same PDU will not help.
	MessPermFault
	// MessTempFault means this specific message/request failed but may
	// succeed if retried later.
	MessTempFault
	// ConnPermFault means the bind/session itself is unusable and should
	// not be retried without operator intervention (bad credentials etc).
	ConnPermFault
	// ConnTempFault means the session is in a bad but possibly transient
	// state; a reconnect is warranted.
	ConnTempFault
	// ConnThrottle means the far end asked the connection to slow down.
	ConnThrottle
)

func (c Class) String() string {
	switch c {
	case OK:
		return "ok"
	case MessPermFault:
		return "mess_permfault"
	case MessTempFault:
		return "mess_tempfault"
	case ConnPermFault:
		return "conn_permfault"
	case ConnTempFault:
		return "conn_tempfault"
	case ConnThrottle:
		return "conn_throttle"
	default:
		return "unknown"
	}
}

// Fault wraps an SMPP status code with its message and fault class. It
// satisfies the error interface.
type Fault struct {
	Status pdu.Status
	Msg    string
	Class  Class
}

func (f Fault) Error() string {
	return fmt.Sprintf("smpp: %s (status=0x%08X, class=%s)", f.Msg, uint32(f.Status), f.Class)
}

var table = map[pdu.Status]Fault{
	pdu.StatusOK:              {pdu.StatusOK, "No Error", OK},
	pdu.StatusInvMsgLen:       {pdu.StatusInvMsgLen, "Message Length is invalid", MessPermFault},
	pdu.StatusInvCmdLen:       {pdu.StatusInvCmdLen, "Command Length is invalid", MessPermFault},
	pdu.StatusInvCmdID:        {pdu.StatusInvCmdID, "Invalid Command ID", MessPermFault},
	pdu.StatusInvBnd:          {pdu.StatusInvBnd, "Incorrect BIND Status for given command", ConnTempFault},
	pdu.StatusAlyBnd:          {pdu.StatusAlyBnd, "ESME Already in Bound State", ConnTempFault},
	pdu.StatusInvPrtFlg:       {pdu.StatusInvPrtFlg, "Invalid Priority Flag", MessPermFault},
	pdu.StatusInvRegDlvFlg:    {pdu.StatusInvRegDlvFlg, "Invalid Registered Delivery Flag", MessPermFault},
	pdu.StatusSysErr:          {pdu.StatusSysErr, "System Error", ConnPermFault},
	pdu.StatusInvSrcAdr:       {pdu.StatusInvSrcAdr, "Invalid Source Address", MessPermFault},
	pdu.StatusInvDstAdr:       {pdu.StatusInvDstAdr, "Invalid Destination Address", MessPermFault},
	pdu.StatusInvMsgID:        {pdu.StatusInvMsgID, "Message ID is invalid", MessPermFault},
	pdu.StatusBindFail:        {pdu.StatusBindFail, "Bind Failed", ConnPermFault},
	pdu.StatusInvPaswd:        {pdu.StatusInvPaswd, "Invalid Password", ConnPermFault},
	pdu.StatusInvSysID:        {pdu.StatusInvSysID, "Invalid System ID", ConnPermFault},
	pdu.StatusCancelFail:      {pdu.StatusCancelFail, "Cancel SM Failed", MessPermFault},
	pdu.StatusReplaceFail:     {pdu.StatusReplaceFail, "Replace SM Failed", MessPermFault},
	pdu.StatusMsgQFul:         {pdu.StatusMsgQFul, "Message Queue Full", ConnThrottle},
	pdu.StatusInvSerTyp:       {pdu.StatusInvSerTyp, "Invalid Service Type", ConnPermFault},
	pdu.StatusInvNumDe:        {pdu.StatusInvNumDe, "Invalid number of destinations", MessPermFault},
	pdu.StatusInvDLName:       {pdu.StatusInvDLName, "Invalid Distribution List name", MessPermFault},
	pdu.StatusInvDestFlag:     {pdu.StatusInvDestFlag, "Destination flag is invalid (submit_multi)", MessPermFault},
	pdu.StatusInvSubRep:       {pdu.StatusInvSubRep, "Invalid submit with replace request", MessPermFault},
	pdu.StatusInvEsmClass:     {pdu.StatusInvEsmClass, "Invalid esm_class field data", MessPermFault},
	pdu.StatusCntSubDL:        {pdu.StatusCntSubDL, "Cannot Submit to Distribution List", MessPermFault},
	pdu.StatusSubmitFail:      {pdu.StatusSubmitFail, "submit_sm or submit_multi failed", MessTempFault},
	pdu.StatusInvSrcTON:       {pdu.StatusInvSrcTON, "Invalid Source address TON", MessPermFault},
	pdu.StatusInvSrcNPI:       {pdu.StatusInvSrcNPI, "Invalid Source address NPI", MessPermFault},
	pdu.StatusInvDstTON:       {pdu.StatusInvDstTON, "Invalid Destination address TON", MessPermFault},
	pdu.StatusInvDstNPI:       {pdu.StatusInvDstNPI, "Invalid Destination address NPI", MessPermFault},
	pdu.StatusInvSysTyp:       {pdu.StatusInvSysTyp, "Invalid system_type field", ConnPermFault},
	pdu.StatusInvRepFlag:      {pdu.StatusInvRepFlag, "Invalid replace_if_present flag", MessPermFault},
	pdu.StatusInvNumMsgs:      {pdu.StatusInvNumMsgs, "Invalid number of messages", MessTempFault},
	pdu.StatusThrottled:       {pdu.StatusThrottled, "Throttling error (ESME has exceeded allowed message limits)", ConnThrottle},
	pdu.StatusInvSched:        {pdu.StatusInvSched, "Invalid Scheduled Delivery Time", MessPermFault},
	pdu.StatusInvExpiry:       {pdu.StatusInvExpiry, "Invalid message validity period", MessPermFault},
	pdu.StatusInvDftMsgID:     {pdu.StatusInvDftMsgID, "Predefined Message Invalid or Not Found", MessPermFault},
	pdu.StatusTempAppErr:      {pdu.StatusTempAppErr, "ESME Receiver Temporary App Error Code", MessTempFault},
	pdu.StatusPermAppErr:      {pdu.StatusPermAppErr, "ESME Receiver Permanent App Error Code", MessPermFault},
	pdu.StatusRejeAppErr:      {pdu.StatusRejeAppErr, "ESME Receiver Reject Message Error Code", MessPermFault},
	pdu.StatusQueryFail:       {pdu.StatusQueryFail, "query_sm request failed", MessPermFault},
	pdu.StatusInvOptParStream: {pdu.StatusInvOptParStream, "Error in the optional part of the PDU Body", MessPermFault},
	pdu.StatusOptParNotAllwd:  {pdu.StatusOptParNotAllwd, "Optional Parameter not allowed", MessPermFault},
	pdu.StatusInvParLen:       {pdu.StatusInvParLen, "Invalid Parameter Length", MessPermFault},
	pdu.StatusMissingOptParam: {pdu.StatusMissingOptParam, "Expected Optional Parameter missing", MessPermFault},
	pdu.StatusInvOptParamVal:  {pdu.StatusInvOptParamVal, "Invalid Optional Parameter Value", MessPermFault},
	pdu.StatusDeliveryFailure: {pdu.StatusDeliveryFailure, "Delivery Failure", MessTempFault},
	pdu.StatusUnknownErr:      {pdu.StatusUnknownErr, "Unknown Error", MessTempFault},
}

// Classify maps a wire command_status to its Fault. Status codes absent
// from the table classify as OK (permissive, should be logged by the
// caller), mirroring the source dispatch map's default handler.
func Classify(s pdu.Status) Fault {
	if f, ok := table[s]; ok {
		return f
	}
	return Fault{Status: s, Msg: "Unrecognized status code", Class: OK}
}

// IsFault reports whether s represents anything other than StatusOK.
func IsFault(s pdu.Status) bool {
	return s != pdu.StatusOK
}
