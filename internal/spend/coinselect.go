package spend

import (
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/ordforge/ordforge/internal/mempool"
)

// DustThreshold is the minimum economically spendable value in satoshis
// for a single-key segwit output.
const DustThreshold = 294

// Output is one planned transaction output. An empty Address marks the
// change output, which the builder routes back to the spending key's own
// address.
type Output struct {
	Value   int64
	Address string
}

// Plan is the result of coin selection: which UTXOs to spend, the outputs
// to create, and the miner fee. Ephemeral: computed fresh for every spend
// attempt and never persisted.
type Plan struct {
	Inputs  []mempool.UTXO
	Outputs []Output

	// Fee is the miner fee in satoshis. Normally ceil(vbytes × feeRate);
	// when a dust change output is folded it absorbs the remainder.
	Fee int64

	// Weight is the estimated transaction weight the fee was computed from.
	Weight int64

	// Total is the summed value of the selected inputs.
	Total int64
}

// VBytes returns the plan's estimated virtual size.
func (p *Plan) VBytes() float64 {
	return VBytes(p.Weight)
}

// ClassifyAddress parses an address for the given network and returns its
// output script class. Fails with ErrInvalidAddress on any syntactic or
// network mismatch.
func ClassifyAddress(address string, params *chaincfg.Params) (ScriptClass, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, address, err)
	}
	if !addr.IsForNet(params) {
		return 0, fmt.Errorf("%w: %q is not a %s address", ErrInvalidAddress, address, params.Name)
	}
	switch addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return ScriptP2PKH, nil
	case *btcutil.AddressScriptHash:
		return ScriptP2SH, nil
	case *btcutil.AddressWitnessPubKeyHash:
		return ScriptP2WPKH, nil
	case *btcutil.AddressWitnessScriptHash:
		return ScriptP2WSH, nil
	case *btcutil.AddressTaproot:
		return ScriptP2TR, nil
	default:
		return 0, fmt.Errorf("%w: %q: unsupported address type %T", ErrInvalidAddress, address, addr)
	}
}

// SelectCoins chooses UTXOs to pay amount satoshis to recipient at the
// given fee rate (sat/vB).
//
// Selection is largest-first: dust UTXOs are dropped, the rest sorted by
// value descending, and inputs accumulated until they cover
// amount + ceil(vbytes × feeRate), with the size re-estimated after every
// addition (p2wpkh inputs, two outputs of the recipient's script class).
//
// Change at or below the dust threshold is folded into the fee instead of
// creating an uneconomical output; the plan then carries a single payment
// output and Fee absorbs the remainder.
func SelectCoins(amount int64, feeRate float64, recipient string, utxos []mempool.UTXO, params *chaincfg.Params) (*Plan, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrInvariant, amount)
	}
	if feeRate < 0 {
		return nil, fmt.Errorf("%w: negative fee rate %v", ErrInvariant, feeRate)
	}

	outClass, err := ClassifyAddress(recipient, params)
	if err != nil {
		return nil, err
	}

	candidates := make([]mempool.UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Value >= DustThreshold {
			candidates = append(candidates, u)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Value > candidates[j].Value
	})

	var (
		selected []mempool.UTXO
		total    int64
		weight   int64
		fee      int64
		funded   bool
	)
	for _, u := range candidates {
		selected = append(selected, u)
		total += u.Value

		weight = EstimateWeight(len(selected), outClass, 2)
		fee = FeeForWeight(weight, feeRate)
		if total >= amount+fee {
			funded = true
			break
		}
	}
	if !funded {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, sumValues(candidates), amount+fee)
	}

	plan := &Plan{
		Inputs: selected,
		Fee:    fee,
		Weight: weight,
		Total:  total,
	}

	change := total - amount - fee
	if change > DustThreshold {
		plan.Outputs = []Output{
			{Value: amount, Address: recipient},
			{Value: change}, // Change back to the order's own address.
		}
	} else {
		// Dust change is not worth an output; let the miner have it.
		plan.Fee = total - amount
		plan.Outputs = []Output{
			{Value: amount, Address: recipient},
		}
	}
	return plan, nil
}

func sumValues(utxos []mempool.UTXO) int64 {
	var total int64
	for _, u := range utxos {
		total += u.Value
	}
	return total
}
