package swap

import (
	"bytes"

	"github.com/pkg/errors"

	"spv-lens/pkg/btcspv"
	"spv-lens/pkg/validatespv"
)

// payeeCompareLen is how much of the output lock hash the OP_RETURN payload
// must reproduce.
const payeeCompareLen = 20

// Host supplies the data of the transaction being verified. Output index 0 is
// the cell the buyer receives.
type Host interface {
	LoadArgs() ([]byte, error)
	LoadWitness() ([]byte, error)
	LoadOutputLockHash(index int) ([]byte, error)
	LoadOutputCapacity(index int) (uint64, error)
}

// Run evaluates the swap and returns its exit code.
func Run(host Host) int {
	return int(CodeOf(Evaluate(host)))
}

// Evaluate loads the listing and payment proof from host and checks, in
// order: witness shape, vin, vout, merkle inclusion in the first header,
// header chain validity, accumulated work, the listed outpoint, the payee and
// the output capacity.
func Evaluate(host Host) error {
	rawArgs, err := host.LoadArgs()
	if err != nil {
		return errors.Wrap(ErrEncoding, err.Error())
	}
	args, err := DecodeArgs(rawArgs)
	if err != nil {
		return err
	}

	rawWitness, err := host.LoadWitness()
	if err != nil {
		return errors.Wrap(ErrSyscall, err.Error())
	}
	w, err := DecodeWitness(rawWitness)
	if err != nil {
		return err
	}

	if err := VerifyPayment(args, w); err != nil {
		return err
	}

	lockHash, err := host.LoadOutputLockHash(0)
	if err != nil {
		return errors.Wrap(ErrSyscall, err.Error())
	}
	if err := checkPayee(w.Vout, lockHash); err != nil {
		return err
	}

	capacity, err := host.LoadOutputCapacity(0)
	if err != nil {
		return errors.Wrap(ErrSyscall, err.Error())
	}
	if capacity < args.Value {
		return errors.Wrapf(ErrNotEnoughCapacity, "capacity %d, listed value %d", capacity, args.Value)
	}
	return nil
}

// VerifyPayment checks that w proves a bitcoin transaction spending the
// listed outpoint, confirmed under at least the required work.
func VerifyPayment(args Args, w Witness) error {
	if err := btcspv.CheckVin(w.Vin); err != nil {
		return errors.Wrap(ErrBadVin, err.Error())
	}
	if err := btcspv.CheckVout(w.Vout); err != nil {
		return errors.Wrap(ErrBadVout, err.Error())
	}

	txid := validatespv.CalculateTxID(w.Version, w.Vin, w.Vout, w.Locktime)
	root, err := btcspv.ExtractMerkleRootLE(w.Headers)
	if err != nil {
		return errors.Wrap(ErrBadWitness, err.Error())
	}
	if !validatespv.Prove(txid, root, w.IntermediateNodes, uint64(w.Index)) {
		return errors.Wrapf(ErrInvalidMerkleProof, "txid %s at index %d", txid.Reversed().Hex(), w.Index)
	}

	work, err := validatespv.ValidateHeaderChain(w.Headers)
	if err != nil {
		switch btcspv.CodeOf(err) {
		case btcspv.CodeLowWork:
			return errors.Wrap(ErrLowWorkHeaderChain, err.Error())
		case btcspv.CodeInvalidChain:
			return errors.Wrap(ErrInvalidHeaderChain, err.Error())
		default:
			return errors.Wrap(ErrBadWitness, err.Error())
		}
	}
	if work < args.WorkRequirement {
		return errors.Wrapf(ErrNotEnoughWork, "chain has %d, listing requires %d", work, args.WorkRequirement)
	}

	txin, err := btcspv.ExtractInputAtIndex(w.Vin, 0)
	if err != nil {
		return errors.Wrap(ErrWrongListing, err.Error())
	}
	outpoint, err := btcspv.ExtractOutpoint(txin)
	if err != nil || !bytes.Equal(outpoint, args.Outpoint[:]) {
		return errors.Wrap(ErrWrongListing, "outpoint mismatch")
	}
	return nil
}

// checkPayee requires output 1 to be an OP_RETURN whose payload begins with
// the first payeeCompareLen bytes of lockHash. Any other output 1 fails.
func checkPayee(vout, lockHash []byte) error {
	txout, err := btcspv.ExtractOutputAtIndex(vout, 1)
	if err != nil {
		return errors.Wrap(ErrWrongPayee, err.Error())
	}
	payee, err := btcspv.ExtractOpReturnData(txout)
	if err != nil {
		return errors.Wrap(ErrWrongPayee, err.Error())
	}
	if len(payee) < payeeCompareLen || len(lockHash) < payeeCompareLen {
		return errors.Wrapf(ErrWrongPayee, "payee is %d bytes, lock hash %d", len(payee), len(lockHash))
	}
	if !bytes.Equal(payee[:payeeCompareLen], lockHash[:payeeCompareLen]) {
		return errors.Wrap(ErrWrongPayee, "payee mismatch")
	}
	return nil
}

// StaticHost serves fixed values, for evaluating a swap outside a chain
// runtime.
type StaticHost struct {
	Args       []byte
	Witness    []byte
	LockHashes [][]byte
	Capacities []uint64
}

// LoadArgs implements Host.
func (h StaticHost) LoadArgs() ([]byte, error) {
	return h.Args, nil
}

// LoadWitness implements Host.
func (h StaticHost) LoadWitness() ([]byte, error) {
	return h.Witness, nil
}

// LoadOutputLockHash implements Host.
func (h StaticHost) LoadOutputLockHash(index int) ([]byte, error) {
	if index < 0 || index >= len(h.LockHashes) {
		return nil, errors.Errorf("no output %d", index)
	}
	return h.LockHashes[index], nil
}

// LoadOutputCapacity implements Host.
func (h StaticHost) LoadOutputCapacity(index int) (uint64, error) {
	if index < 0 || index >= len(h.Capacities) {
		return 0, errors.Errorf("no output %d", index)
	}
	return h.Capacities[index], nil
}
