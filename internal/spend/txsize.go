package spend

import "math"

// ScriptClass is the output script type inferred from an address.
type ScriptClass int

const (
	ScriptP2PKH ScriptClass = iota
	ScriptP2SH
	ScriptP2WPKH
	ScriptP2WSH
	ScriptP2TR
)

// Transaction size model in weight units (1 vbyte = 4 WU). Inputs are
// always single-key p2wpkh, the only script type this wallet spends.
//
// A p2wpkh input is 41 non-witness bytes (outpoint 36, empty script 1,
// sequence 4) plus a 107-byte witness (signature and compressed pubkey
// with their push prefixes). The per-input witness stack count and the
// segwit marker/flag pair are accounted in the overhead.
const (
	inputP2WPKHWeight = 41*4 + 107

	outputP2PKHWeight  = 34 * 4
	outputP2SHWeight   = 32 * 4
	outputP2WPKHWeight = 31 * 4
	outputP2WSHWeight  = 43 * 4
	outputP2TRWeight   = 43 * 4

	segwitMarkerWeight = 2 // marker + flag, 1 WU each
)

// varIntSize returns the serialized size in bytes of a Bitcoin varint.
func varIntSize(n int) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

func outputWeight(class ScriptClass) int64 {
	switch class {
	case ScriptP2PKH:
		return outputP2PKHWeight
	case ScriptP2SH:
		return outputP2SHWeight
	case ScriptP2WPKH:
		return outputP2WPKHWeight
	case ScriptP2WSH:
		return outputP2WSHWeight
	default:
		return outputP2TRWeight
	}
}

// EstimateWeight returns the weight of a transaction with the given number
// of p2wpkh inputs and outputs of one script class.
func EstimateWeight(inputs int, outClass ScriptClass, outputs int) int64 {
	// Version, input/output counts, locktime. Non-witness bytes.
	overhead := int64(4+varIntSize(inputs)+varIntSize(outputs)+4) * 4

	w := overhead + segwitMarkerWeight
	w += int64(inputs) // witness stack count, one byte per input
	w += int64(inputs) * inputP2WPKHWeight
	w += int64(outputs) * outputWeight(outClass)
	return w
}

// VBytes converts a weight to virtual bytes (quarter-vbyte precision).
func VBytes(weight int64) float64 {
	return float64(weight) / 4
}

// FeeForWeight computes ceil(vbytes × feeRate) for a weight. A zero rate
// is permitted and yields a zero fee.
func FeeForWeight(weight int64, feeRate float64) int64 {
	return int64(math.Ceil(VBytes(weight) * feeRate))
}
