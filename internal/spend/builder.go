package spend

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ordforge/ordforge/internal/wallet"
)

// SignedTx is a fully signed, finalized transaction ready for broadcast.
// Built once per spend attempt; a failed broadcast discards it and the
// next pass recomputes from fresh UTXO state.
type SignedTx struct {
	Hex  string
	TxID string
	Fee  int64
}

// BuildTx assembles and signs a transaction for the plan using the order's
// derived key. Every input spends the key's own p2wpkh script (the funds
// arrived at the derived address); the change output, if any, pays back to
// that same address.
func BuildTx(plan *Plan, key *wallet.OrderKey, params *chaincfg.Params) (*SignedTx, error) {
	if len(plan.Inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs to sign", ErrInvariant)
	}
	if len(plan.Outputs) == 0 {
		return nil, fmt.Errorf("%w: no outputs to sign", ErrInvariant)
	}
	if len(plan.Outputs) > 2 {
		return nil, fmt.Errorf("%w: %d outputs, want at most payment and change", ErrInvariant, len(plan.Outputs))
	}

	selfScript, err := txscript.PayToAddrScript(key.Address)
	if err != nil {
		return nil, fmt.Errorf("self output script: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)

	prevOuts := txscript.NewMultiPrevOutFetcher(nil)
	for _, in := range plan.Inputs {
		txid, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil {
			return nil, fmt.Errorf("input txid %q: %w", in.TxID, err)
		}
		op := wire.NewOutPoint(txid, in.Vout)

		txIn := wire.NewTxIn(op, nil, nil)
		txIn.Sequence = 0
		tx.AddTxIn(txIn)

		prevOuts.AddPrevOut(*op, wire.NewTxOut(in.Value, selfScript))
	}

	for _, out := range plan.Outputs {
		script := selfScript
		if out.Address != "" {
			addr, err := btcutil.DecodeAddress(out.Address, params)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, out.Address, err)
			}
			script, err = txscript.PayToAddrScript(addr)
			if err != nil {
				return nil, fmt.Errorf("output script for %q: %w", out.Address, err)
			}
		}
		tx.AddTxOut(wire.NewTxOut(out.Value, script))
	}

	sigHashes := txscript.NewTxSigHashes(tx, prevOuts)
	for i, in := range plan.Inputs {
		witness, err := txscript.WitnessSignature(tx, sigHashes, i, in.Value,
			selfScript, txscript.SigHashAll, key.PrivKey, true)
		if err != nil {
			return nil, fmt.Errorf("sign input %d: %w", i, err)
		}
		tx.TxIn[i].Witness = witness
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}

	return &SignedTx{
		Hex:  hex.EncodeToString(buf.Bytes()),
		TxID: tx.TxHash().String(),
		Fee:  plan.Fee,
	}, nil
}
