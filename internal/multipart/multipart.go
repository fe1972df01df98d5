// Package multipart reassembles concatenated short messages split across
// several deliver_sm PDUs, keyed by reference number, fragment total, and
// the source/destination addresses the fragments share. Fragment order of
// arrival does not matter; reassembly orders by the fragment's own
// sequence number.
package multipart

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/guyt101z/vumi-smpp-client/internal/store"
	"github.com/guyt101z/vumi-smpp-client/pdu"
)

// udhConcatSimple is the information element tag for concatenated short
// messages with an 8-bit reference number (GSM 03.40 9.2.3.24.1).
const udhConcatSimple = 0x00

// udhConcat16bit is the 16-bit reference variant (9.2.3.24.8).
const udhConcat16bit = 0x08

// Ref identifies one multipart message's fragment set.
type Ref struct {
	Num   int
	Total int
	Src   string
	Dst   string
}

// Key returns the stable string used as the store.Keyspace multipart key
// component, matching spec.md's "{ref}_{total}_{src}_{dst}" convention.
func (r Ref) Key() string {
	return fmt.Sprintf("%d_%d_%s_%s", r.Num, r.Total, r.Src, r.Dst)
}

// Fragment is one piece of a buffered multipart message, as persisted in
// the store. Data is base64-encoded when the fragment came off a UDH
// (opaque binary split point), and a plain string when it came from SAR
// parameters (splits on rune/byte boundaries of the decoded text).
type Fragment struct {
	Seq  int    `json:"seq"`
	Data string `json:"data"`
}

// Reassembler buffers and reassembles multipart deliver_sm bodies via a
// store.Store, so buffers survive a reconnect.
type Reassembler struct {
	store    store.Store
	keyspace store.Keyspace
}

// New creates a Reassembler backed by s, using keyspace for its buffer
// keys.
func New(s store.Store, keyspace store.Keyspace) *Reassembler {
	return &Reassembler{store: s, keyspace: keyspace}
}

// parseConcatUDH walks the information elements inside a UDH block
// (as returned by pdu.SeparateUDH, including its length-prefix byte)
// looking for a concatenated short message IE.
func parseConcatUDH(udh []byte) (Ref, bool) {
	if len(udh) < 2 {
		return Ref{}, false
	}
	body := udh[1:] // drop the UDH total-length byte
	i := 0
	for i+1 < len(body) {
		tag := body[i]
		length := int(body[i+1])
		i += 2
		if i+length > len(body) {
			return Ref{}, false
		}
		ie := body[i : i+length]
		switch tag {
		case udhConcatSimple:
			if length != 3 {
				break
			}
			return Ref{Num: int(ie[0]), Total: int(ie[1])}, true
		case udhConcat16bit:
			if length != 4 {
				break
			}
			return Ref{Num: int(ie[0])<<8 | int(ie[1]), Total: int(ie[2])}, true
		}
		i += length
	}
	return Ref{}, false
}

// concatSeq recovers the per-fragment sequence number for a UDH IE, which
// parseConcatUDH intentionally does not fold into Ref (Ref identifies the
// *set*, not one member of it).
func concatSeq(udh []byte) (int, bool) {
	if len(udh) < 2 {
		return 0, false
	}
	body := udh[1:]
	i := 0
	for i+1 < len(body) {
		tag := body[i]
		length := int(body[i+1])
		i += 2
		if i+length > len(body) {
			return 0, false
		}
		ie := body[i : i+length]
		switch tag {
		case udhConcatSimple:
			if length == 3 {
				return int(ie[2]), true
			}
		case udhConcat16bit:
			if length == 4 {
				return int(ie[3]), true
			}
		}
		i += length
	}
	return 0, false
}

// Add buffers one deliver_sm body for the multipart set identified by src
// and dst. shortMessage is the raw mandatory-parameter field (UDH still
// attached when esmClass carries the UDHI feature); opts is the PDU's
// optional parameters, used for the SAR addressing scheme.
//
// When the newly buffered fragment completes the set, Add deletes the
// store buffer and returns the reassembled text with complete=true. The
// delete happens exactly once, the first time the set becomes complete;
// duplicate fragments (same seq arriving twice) overwrite in place rather
// than accumulating.
func (r *Reassembler) Add(ctx context.Context, src, dst string, esmClass pdu.EsmClass, shortMessage []byte, opts *pdu.Options) (text string, complete bool, ok bool, err error) {
	var ref Ref
	var seq int
	var fragment []byte
	var isBinary bool

	switch {
	case esmClass.Feature == pdu.UDHIEsmFeat || esmClass.Feature == pdu.UDHIRepPathEsmFeat:
		udh, body, uerr := pdu.SeparateUDH(shortMessage)
		if uerr != nil {
			return "", false, false, nil
		}
		rr, ok := parseConcatUDH(udh)
		if !ok {
			return "", false, false, nil
		}
		s, ok := concatSeq(udh)
		if !ok {
			return "", false, false, nil
		}
		ref, seq, fragment, isBinary = rr, s, body, true

	case opts != nil && opts.SarTotalSegments() > 0:
		ref = Ref{Num: opts.SarMsgRefNum(), Total: opts.SarTotalSegments()}
		seq = opts.SarSegmentSeqnum()
		fragment = shortMessage
		isBinary = false

	default:
		return "", false, false, nil
	}
	ref.Src, ref.Dst = src, dst

	key := r.keyspace.MultipartKey(ref.Key())
	fragments, err := r.load(ctx, key)
	if err != nil {
		return "", false, true, err
	}

	data := string(fragment)
	if isBinary {
		data = base64.StdEncoding.EncodeToString(fragment)
	}
	fragments = upsert(fragments, Fragment{Seq: seq, Data: data})

	if len(fragments) < ref.Total {
		if err := r.save(ctx, key, fragments); err != nil {
			return "", false, true, err
		}
		return "", false, true, nil
	}

	sort.Slice(fragments, func(i, j int) bool { return fragments[i].Seq < fragments[j].Seq })

	var out []byte
	for _, f := range fragments {
		if isBinary {
			b, derr := base64.StdEncoding.DecodeString(f.Data)
			if derr != nil {
				return "", false, true, derr
			}
			out = append(out, b...)
		} else {
			out = append(out, f.Data...)
		}
	}
	if err := r.store.Delete(ctx, key); err != nil {
		return "", false, true, err
	}
	return string(out), true, true, nil
}

func upsert(fragments []Fragment, f Fragment) []Fragment {
	for i, existing := range fragments {
		if existing.Seq == f.Seq {
			fragments[i] = f
			return fragments
		}
	}
	return append(fragments, f)
}

func (r *Reassembler) load(ctx context.Context, key string) ([]Fragment, error) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var fragments []Fragment
	if err := json.Unmarshal(raw, &fragments); err != nil {
		return nil, err
	}
	return fragments, nil
}

func (r *Reassembler) save(ctx context.Context, key string, fragments []Fragment) error {
	raw, err := json.Marshal(fragments)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, key, raw)
}
