package mempool

// TxStatus is the confirmation state reported by the explorer for a
// transaction or a UTXO's funding transaction.
type TxStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height"`
	BlockHash   string `json:"block_hash"`
	BlockTime   int64  `json:"block_time"`
}

// UTXO is an unspent output at an address, as reported by the explorer.
// Read-only snapshot; re-fetched on every reconciliation pass.
type UTXO struct {
	TxID   string   `json:"txid"`
	Vout   uint32   `json:"vout"`
	Value  int64    `json:"value"`
	Status TxStatus `json:"status"`
}

// Tx is the subset of explorer transaction detail this service reads.
type Tx struct {
	TxID   string   `json:"txid"`
	Fee    int64    `json:"fee"`
	Status TxStatus `json:"status"`
}

// RecommendedFees is the explorer's fee-rate guidance in sat/vB.
type RecommendedFees struct {
	FastestFee  float64 `json:"fastestFee"`
	HalfHourFee float64 `json:"halfHourFee"`
	HourFee     float64 `json:"hourFee"`
	EconomyFee  float64 `json:"economyFee"`
	MinimumFee  float64 `json:"minimumFee"`
}
