package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"spv-lens/pkg/btcspv"
	"spv-lens/pkg/validatespv"
)

var (
	bucketHeaders = []byte("headers_by_hash")
	bucketProofs  = []byte("proofs_by_txid")
)

// StoredHeader is a header with its height and the work of the stored
// chain up to and including it.
type StoredHeader struct {
	Raw    []byte `msgpack:"raw"`
	Height uint32 `msgpack:"height"`
	Work   uint64 `msgpack:"work"`
}

// Header returns the parsed form of s.
func (s StoredHeader) Header() (validatespv.BitcoinHeader, error) {
	raw, err := btcspv.NewRawHeader(s.Raw)
	if err != nil {
		return validatespv.BitcoinHeader{}, err
	}
	return validatespv.HeaderFromRaw(raw, s.Height), nil
}

type proofRecord struct {
	Version  []byte `msgpack:"version"`
	Vin      []byte `msgpack:"vin"`
	Vout     []byte `msgpack:"vout"`
	Locktime []byte `msgpack:"locktime"`
	Index    uint32 `msgpack:"index"`
	Header   []byte `msgpack:"header"`
	Height   uint32 `msgpack:"height"`
	Nodes    []byte `msgpack:"nodes"`
}

// DB stores validated headers and SPV proofs in a bbolt file.
type DB struct {
	db     *bolt.DB
	logger *zap.Logger
}

// Open opens or creates the store under dir.
func Open(dir string, logger *zap.Logger) (*DB, error) {
	if dir == "" {
		return nil, errors.New("data dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	path := filepath.Join(dir, "spv.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open bbolt")
	}

	if err := bdb.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketHeaders, bucketProofs} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return errors.Wrapf(err, "create bucket %s", b)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	logger.Info("proof store opened", zap.String("path", path))
	return &DB{db: bdb, logger: logger}, nil
}

// Close releases the database file. It is safe on a nil DB.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// PutHeaderChain validates headers and stores each one keyed by its
// little-endian hash. If the first header's parent is stored, heights and
// work continue from it and height is ignored. It returns the cumulative
// work at the last header.
func (d *DB) PutHeaderChain(headers []byte, height uint32) (uint64, error) {
	if len(headers) == 0 {
		return 0, errors.New("empty header chain")
	}
	if _, err := validatespv.ValidateHeaderChain(headers); err != nil {
		return 0, errors.Wrap(err, "validate header chain")
	}

	var work uint64
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHeaders)

		prev, err := btcspv.ExtractPrevBlockHashLE(headers)
		if err != nil {
			return err
		}
		if v := b.Get(prev[:]); v != nil {
			var parent StoredHeader
			if err := msgpack.Unmarshal(v, &parent); err != nil {
				return errors.Wrap(err, "decode parent header")
			}
			height = parent.Height + 1
			work = parent.Work
		}

		for i := 0; i < len(headers)/btcspv.HeaderSize; i++ {
			raw := headers[i*btcspv.HeaderSize : (i+1)*btcspv.HeaderSize]
			difficulty, err := btcspv.ExtractDifficulty(raw)
			if err != nil {
				return err
			}
			work += difficulty

			rec, err := msgpack.Marshal(StoredHeader{Raw: raw, Height: height + uint32(i), Work: work})
			if err != nil {
				return errors.Wrap(err, "encode header")
			}
			hash := btcspv.Hash256(raw)
			if err := b.Put(hash[:], rec); err != nil {
				return errors.Wrapf(err, "put header %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	d.logger.Debug("header chain stored",
		zap.Int("headers", len(headers)/btcspv.HeaderSize),
		zap.Uint32("first_height", height),
		zap.Uint64("work", work),
	)
	return work, nil
}

// Header looks up a header by its little-endian hash.
func (d *DB) Header(hashLE btcspv.Hash256Digest) (*StoredHeader, bool, error) {
	var out *StoredHeader
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHeaders).Get(hashLE[:])
		if v == nil {
			return nil
		}
		var h StoredHeader
		if err := msgpack.Unmarshal(v, &h); err != nil {
			return errors.Wrap(err, "decode header")
		}
		out = &h
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

// HeaderKnown reports whether a header is stored.
func (d *DB) HeaderKnown(hashLE btcspv.Hash256Digest) bool {
	known := false
	_ = d.db.View(func(tx *bolt.Tx) error {
		known = tx.Bucket(bucketHeaders).Get(hashLE[:]) != nil
		return nil
	})
	return known
}

// PutProof validates proof and stores it under its little-endian txid. The
// confirming header is stored too unless it already is.
func (d *DB) PutProof(proof validatespv.SPVProof) error {
	if err := proof.Validate(); err != nil {
		return errors.Wrap(err, "validate proof")
	}
	header := proof.ConfirmingHeader

	rec, err := msgpack.Marshal(proofRecord{
		Version:  proof.Version,
		Vin:      proof.Vin,
		Vout:     proof.Vout,
		Locktime: proof.Locktime,
		Index:    proof.Index,
		Header:   header.Raw[:],
		Height:   header.Height,
		Nodes:    proof.IntermediateNodes,
	})
	if err != nil {
		return errors.Wrap(err, "encode proof")
	}

	err = d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketProofs).Put(proof.TxIDLE[:], rec); err != nil {
			return errors.Wrap(err, "put proof")
		}
		headers := tx.Bucket(bucketHeaders)
		if headers.Get(header.HashLE[:]) != nil {
			return nil
		}
		difficulty, err := btcspv.ExtractDifficulty(header.Raw[:])
		if err != nil {
			return err
		}
		hrec, err := msgpack.Marshal(StoredHeader{Raw: header.Raw[:], Height: header.Height, Work: difficulty})
		if err != nil {
			return errors.Wrap(err, "encode header")
		}
		return headers.Put(header.HashLE[:], hrec)
	})
	if err != nil {
		return err
	}

	d.logger.Info("proof stored",
		zap.String("txid", proof.TxID.Hex()),
		zap.String("block", header.Hash.Hex()),
		zap.Uint32("height", header.Height),
	)
	return nil
}

// Proof looks up a proof by little-endian txid.
func (d *DB) Proof(txidLE btcspv.Hash256Digest) (*validatespv.SPVProof, bool, error) {
	var rec *proofRecord
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketProofs).Get(txidLE[:])
		if v == nil {
			return nil
		}
		rec = &proofRecord{}
		return errors.Wrap(msgpack.Unmarshal(v, rec), "decode proof")
	})
	if err != nil || rec == nil {
		return nil, false, err
	}

	raw, err := btcspv.NewRawHeader(rec.Header)
	if err != nil {
		return nil, false, errors.Wrap(err, "stored header")
	}
	proof := validatespv.NewSPVProof(rec.Version, rec.Vin, rec.Vout, rec.Locktime, rec.Index,
		validatespv.HeaderFromRaw(raw, rec.Height), rec.Nodes)
	return &proof, true, nil
}

// Confirmations counts the stored headers from the proof's confirming header
// to tip, inclusive. It returns 0 if tip does not descend from it.
func (d *DB) Confirmations(txidLE, tipLE btcspv.Hash256Digest) (uint32, error) {
	proof, ok, err := d.Proof(txidLE)
	if err != nil || !ok {
		return 0, err
	}
	tip, ok, err := d.Header(tipLE)
	if err != nil || !ok {
		return 0, err
	}
	confirming := proof.ConfirmingHeader
	if tip.Height < confirming.Height {
		return 0, nil
	}

	cur := tip
	for cur.Height > confirming.Height {
		prev, err := btcspv.ExtractPrevBlockHashLE(cur.Raw)
		if err != nil {
			return 0, err
		}
		parent, ok, err := d.Header(prev)
		if err != nil || !ok {
			return 0, err
		}
		cur = parent
	}
	if btcspv.Hash256(cur.Raw) != confirming.HashLE {
		return 0, nil
	}
	return tip.Height - confirming.Height + 1, nil
}
