package status_test

import (
	"testing"

	"github.com/guyt101z/vumi-smpp-client/internal/status"
	"github.com/guyt101z/vumi-smpp-client/pdu"
	"github.com/stretchr/testify/assert"
)

func TestClassifyKnownStatuses(t *testing.T) {
	cases := []struct {
		status pdu.Status
		class  status.Class
	}{
		{pdu.StatusOK, status.OK},
		{pdu.StatusInvMsgLen, status.MessPermFault},
		{pdu.StatusInvCmdLen, status.MessPermFault},
		{pdu.StatusInvSrcAdr, status.MessPermFault},
		{pdu.StatusSubmitFail, status.MessTempFault},
		{pdu.StatusInvNumMsgs, status.MessTempFault},
		{pdu.StatusDeliveryFailure, status.MessTempFault},
		{pdu.StatusUnknownErr, status.MessTempFault},
		{pdu.StatusTempAppErr, status.MessTempFault},
		{pdu.StatusInvBnd, status.ConnTempFault},
		{pdu.StatusAlyBnd, status.ConnTempFault},
		{pdu.StatusSysErr, status.ConnPermFault},
		{pdu.StatusBindFail, status.ConnPermFault},
		{pdu.StatusInvPaswd, status.ConnPermFault},
		{pdu.StatusInvSysID, status.ConnPermFault},
		{pdu.StatusInvSerTyp, status.ConnPermFault},
		{pdu.StatusInvSysTyp, status.ConnPermFault},
		{pdu.StatusMsgQFul, status.ConnThrottle},
		{pdu.StatusThrottled, status.ConnThrottle},
	}
	for _, c := range cases {
		got := status.Classify(c.status)
		assert.Equal(t, c.class, got.Class, "status 0x%X", uint32(c.status))
	}
}

func TestClassifyIsTotal(t *testing.T) {
	all := []pdu.Status{
		pdu.StatusOK, pdu.StatusInvMsgLen, pdu.StatusInvCmdLen, pdu.StatusInvCmdID,
		pdu.StatusInvBnd, pdu.StatusAlyBnd, pdu.StatusInvPrtFlg, pdu.StatusInvRegDlvFlg,
		pdu.StatusSysErr, pdu.StatusInvSrcAdr, pdu.StatusInvDstAdr, pdu.StatusInvMsgID,
		pdu.StatusBindFail, pdu.StatusInvPaswd, pdu.StatusInvSysID, pdu.StatusCancelFail,
		pdu.StatusReplaceFail, pdu.StatusMsgQFul, pdu.StatusInvSerTyp, pdu.StatusInvNumDe,
		pdu.StatusInvDLName, pdu.StatusInvDestFlag, pdu.StatusInvSubRep, pdu.StatusInvEsmClass,
		pdu.StatusCntSubDL, pdu.StatusSubmitFail, pdu.StatusInvSrcTON, pdu.StatusInvSrcNPI,
		pdu.StatusInvDstTON, pdu.StatusInvDstNPI, pdu.StatusInvSysTyp, pdu.StatusInvRepFlag,
		pdu.StatusInvNumMsgs, pdu.StatusThrottled, pdu.StatusInvSched, pdu.StatusInvExpiry,
		pdu.StatusInvDftMsgID, pdu.StatusTempAppErr, pdu.StatusPermAppErr, pdu.StatusRejeAppErr,
		pdu.StatusQueryFail, pdu.StatusInvOptParStream, pdu.StatusOptParNotAllwd, pdu.StatusInvParLen,
		pdu.StatusMissingOptParam, pdu.StatusInvOptParamVal, pdu.StatusDeliveryFailure, pdu.StatusUnknownErr,
	}
	for _, s := range all {
		f := status.Classify(s)
		switch f.Class {
		case status.OK, status.MessPermFault, status.MessTempFault,
			status.ConnPermFault, status.ConnTempFault, status.ConnThrottle:
		default:
			t.Fatalf("status 0x%X classified into unknown class %v", uint32(s), f.Class)
		}
	}
}

func TestClassifyUnknownStatusIsPermissive(t *testing.T) {
	f := status.Classify(pdu.Status(0xDEADBEEF))
	assert.Equal(t, status.OK, f.Class)
}

func TestIsFault(t *testing.T) {
	assert.False(t, status.IsFault(pdu.StatusOK))
	assert.True(t, status.IsFault(pdu.StatusThrottled))
}
