package wallet

import (
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/ordforge/ordforge/config"
)

// ChainParams maps the configured network to btcd chain parameters.
// Selected once at process start, never per call.
func ChainParams(network config.NetworkType) *chaincfg.Params {
	if network == config.Testnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}
