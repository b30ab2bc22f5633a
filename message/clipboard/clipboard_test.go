package clipboard

import (
	"bytes"
	"testing"

	"waykshare/codec"
)

func roundTrip(t *testing.T, m *Msg) *Msg {
	t.Helper()
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != m.EncodedLen() {
		t.Errorf("EncodedLen() = %d, actual = %d", m.EncodedLen(), buf.Len())
	}
	decoded, err := Decode(codec.NewCursor(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return decoded
}

func TestCapabilitiesRoundTrip(t *testing.T) {
	decoded := roundTrip(t, &Msg{CapabilitiesReq: NewCapabilitiesReqMsg()})
	if decoded.CapabilitiesReq == nil {
		t.Fatalf("expected a CapabilitiesReq variant, got %+v", decoded)
	}

	decoded = roundTrip(t, &Msg{CapabilitiesRsp: NewCapabilitiesRspMsg(FailureResponseFlags())})
	if decoded.CapabilitiesRsp == nil || !decoded.CapabilitiesRsp.Flags.Failure() {
		t.Fatalf("CapabilitiesRsp = %+v, want Failure() true", decoded.CapabilitiesRsp)
	}
}

func TestControlRoundTrip(t *testing.T) {
	decoded := roundTrip(t, &Msg{ControlReq: NewControlReqMsg(ControlAuto)})
	if decoded.ControlReq == nil || decoded.ControlReq.State != ControlAuto {
		t.Fatalf("ControlReq = %+v, want state ControlAuto", decoded.ControlReq)
	}

	decoded = roundTrip(t, &Msg{ControlRsp: NewControlRspMsgWithFlags(ControlManual, FailureResponseFlags())})
	if decoded.ControlRsp == nil || decoded.ControlRsp.State != ControlManual || !decoded.ControlRsp.Flags.Failure() {
		t.Fatalf("ControlRsp = %+v", decoded.ControlRsp)
	}
}

func TestResumeRoundTrip(t *testing.T) {
	decoded := roundTrip(t, &Msg{ResumeReq: NewResumeReqMsg()})
	if decoded.ResumeReq == nil {
		t.Fatal("expected a ResumeReq variant")
	}

	decoded = roundTrip(t, &Msg{ResumeRsp: NewResumeRspMsgWithFlags(FailureResponseFlags())})
	if decoded.ResumeRsp == nil || !decoded.ResumeRsp.Flags.Failure() {
		t.Fatalf("ResumeRsp = %+v, want Failure() true", decoded.ResumeRsp)
	}
}

func TestFormatListRoundTripWithFormats(t *testing.T) {
	name, err := codec.NewNowString256("text/plain")
	if err != nil {
		t.Fatalf("NewNowString256: %v", err)
	}
	formats := []FormatDef{{ID: 13, Name: name}}
	decoded := roundTrip(t, &Msg{FormatListReq: NewFormatListReqMsg(7, formats)})
	if decoded.FormatListReq == nil || decoded.FormatListReq.SequenceID != 7 {
		t.Fatalf("FormatListReq = %+v", decoded.FormatListReq)
	}
	if len(decoded.FormatListReq.Formats.Items) != 1 || decoded.FormatListReq.Formats.Items[0].ID != 13 {
		t.Fatalf("Formats = %+v", decoded.FormatListReq.Formats.Items)
	}
	if decoded.FormatListReq.Formats.Items[0].Name.String() != "text/plain" {
		t.Errorf("format name = %q, want text/plain", decoded.FormatListReq.Formats.Items[0].Name.String())
	}

	decoded = roundTrip(t, &Msg{FormatListRsp: NewFormatListRspMsg(7)})
	if decoded.FormatListRsp == nil || decoded.FormatListRsp.SequenceID != 7 || decoded.FormatListRsp.Flags.Failure() {
		t.Fatalf("FormatListRsp = %+v", decoded.FormatListRsp)
	}
}

func TestFormatDataRoundTrip(t *testing.T) {
	decoded := roundTrip(t, &Msg{FormatDataReq: NewFormatDataReqMsg(3, 99)})
	if decoded.FormatDataReq == nil || decoded.FormatDataReq.SequenceID != 3 || decoded.FormatDataReq.FormatID != 99 {
		t.Fatalf("FormatDataReq = %+v", decoded.FormatDataReq)
	}

	payload := []byte("clipboard contents")
	decoded = roundTrip(t, &Msg{FormatDataRsp: NewOwnedFormatDataRspMsg(3, 99, payload)})
	if decoded.FormatDataRsp == nil || !bytes.Equal(decoded.FormatDataRsp.Data, payload) {
		t.Fatalf("FormatDataRsp = %+v, want data %q", decoded.FormatDataRsp, payload)
	}
}

func TestDecodeUnknownSubtypeErrors(t *testing.T) {
	raw := []byte{0xFF, 0, 0, 0}
	if _, err := Decode(codec.NewCursor(raw)); err == nil {
		t.Fatal("expected an error decoding an unknown clipboard subtype")
	}
}

func TestEmptyMsgEncodeErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := (&Msg{}).Encode(&buf); err == nil {
		t.Fatal("expected an error encoding an empty clipboard message")
	}
}
