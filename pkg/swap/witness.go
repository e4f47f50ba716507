package swap

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"spv-lens/pkg/btcspv"
	"spv-lens/pkg/validatespv"
)

const (
	// ArgsSize is value (8) + work requirement (8) + outpoint (36).
	ArgsSize = 8 + 8 + 36
	// MaxWitnessSize bounds the witness a host may hand over.
	MaxWitnessSize = 32768

	outpointSize = 36
	nodeSize     = 32
	maxVectorLen = 255
)

// Args describes a listing: the amount for sale, the work a payment proof
// must carry, and the bitcoin outpoint the buyer must spend.
type Args struct {
	Value           uint64
	WorkRequirement uint64
	Outpoint        [outpointSize]byte
}

// DecodeArgs parses the 52-byte listing. The value is little-endian and the
// work requirement big-endian.
func DecodeArgs(b []byte) (Args, error) {
	if len(b) != ArgsSize {
		return Args{}, errors.Wrapf(ErrEncoding, "args are %d bytes, want %d", len(b), ArgsSize)
	}
	var a Args
	a.Value = binary.LittleEndian.Uint64(b[0:8])
	a.WorkRequirement = binary.BigEndian.Uint64(b[8:16])
	copy(a.Outpoint[:], b[16:])
	return a, nil
}

// Encode is the inverse of DecodeArgs.
func (a Args) Encode() []byte {
	out := make([]byte, 0, ArgsSize)
	out = binary.LittleEndian.AppendUint64(out, a.Value)
	out = binary.BigEndian.AppendUint64(out, a.WorkRequirement)
	return append(out, a.Outpoint[:]...)
}

// Witness is a payment proof: a header chain whose first header confirms
// the payment, the merkle path to it, and the payment transaction.
//
// Serialized as u8 nHeaders, headers, u8 nNodes, nodes, u32 LE index,
// version, vin, vout, locktime.
type Witness struct {
	Headers           []byte
	IntermediateNodes []byte
	Index             uint32
	Version           []byte
	Vin               []byte
	Vout              []byte
	Locktime          []byte
}

// NewWitness packs an SPV proof with the header chain built on its
// confirming header. headers may be empty, in which case the confirming
// header alone is used.
func NewWitness(proof validatespv.SPVProof, headers []byte) (Witness, error) {
	confirming := proof.ConfirmingHeader.Raw[:]
	if len(headers) == 0 {
		headers = confirming
	}
	if len(headers) < btcspv.HeaderSize || !bytes.Equal(headers[:btcspv.HeaderSize], confirming) {
		return Witness{}, errors.Wrap(ErrBadWitness, "header chain must start with the confirming header")
	}
	return Witness{
		Headers:           headers,
		IntermediateNodes: proof.IntermediateNodes,
		Index:             proof.Index,
		Version:           proof.Version,
		Vin:               proof.Vin,
		Vout:              proof.Vout,
		Locktime:          proof.Locktime,
	}, nil
}

// Encode serializes the witness. It fails if a vector does not fit its
// one-byte count.
func (w Witness) Encode() ([]byte, error) {
	if len(w.Headers)%btcspv.HeaderSize != 0 || len(w.Headers)/btcspv.HeaderSize > maxVectorLen {
		return nil, errors.Wrapf(ErrBadWitness, "cannot encode %d header bytes", len(w.Headers))
	}
	if len(w.IntermediateNodes)%nodeSize != 0 || len(w.IntermediateNodes)/nodeSize > maxVectorLen {
		return nil, errors.Wrapf(ErrBadWitness, "cannot encode %d node bytes", len(w.IntermediateNodes))
	}

	out := make([]byte, 0, 2+len(w.Headers)+len(w.IntermediateNodes)+4+len(w.Version)+len(w.Vin)+len(w.Vout)+len(w.Locktime))
	out = append(out, byte(len(w.Headers)/btcspv.HeaderSize))
	out = append(out, w.Headers...)
	out = append(out, byte(len(w.IntermediateNodes)/nodeSize))
	out = append(out, w.IntermediateNodes...)
	out = binary.LittleEndian.AppendUint32(out, w.Index)
	out = append(out, w.Version...)
	out = append(out, w.Vin...)
	out = append(out, w.Vout...)
	out = append(out, w.Locktime...)
	if len(out) > MaxWitnessSize {
		return nil, errors.Wrapf(ErrWitnessSize, "witness is %d bytes", len(out))
	}
	return out, nil
}

// DecodeWitness parses a witness, consuming every byte. The vin and vout are
// validated as they are read.
func DecodeWitness(b []byte) (Witness, error) {
	if len(b) > MaxWitnessSize {
		return Witness{}, errors.Wrapf(ErrWitnessSize, "witness is %d bytes", len(b))
	}
	r := reader{buf: b}
	var w Witness

	nHeaders := r.u8()
	if nHeaders == 0 {
		return Witness{}, errors.Wrap(ErrBadWitness, "no headers")
	}
	w.Headers = r.take(int(nHeaders) * btcspv.HeaderSize)
	w.IntermediateNodes = r.take(int(r.u8()) * nodeSize)
	if idx := r.take(4); idx != nil {
		w.Index = binary.LittleEndian.Uint32(idx)
	}
	w.Version = r.take(4)
	if r.short {
		return Witness{}, errors.Wrap(ErrBadWitness, "truncated before vin")
	}

	vinLen, err := btcspv.DetermineVinLength(r.rest())
	if err != nil {
		return Witness{}, errors.Wrap(ErrBadVin, err.Error())
	}
	w.Vin = r.take(int(vinLen))

	voutLen, err := btcspv.DetermineVoutLength(r.rest())
	if err != nil {
		return Witness{}, errors.Wrap(ErrBadVout, err.Error())
	}
	w.Vout = r.take(int(voutLen))

	w.Locktime = r.take(4)
	if r.short || len(r.rest()) != 0 {
		return Witness{}, errors.Wrapf(ErrBadWitness, "witness is %d bytes, proof ends at %d", len(b), r.off)
	}
	return w, nil
}

// reader consumes a witness front to back. Once a read runs past the end it
// stays short and returns nil.
type reader struct {
	buf   []byte
	off   int
	short bool
}

func (r *reader) take(n int) []byte {
	if r.short || n > len(r.buf)-r.off {
		r.short = true
		return nil
	}
	out := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return out
}

func (r *reader) u8() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) rest() []byte {
	if r.short {
		return nil
	}
	return r.buf[r.off:]
}
