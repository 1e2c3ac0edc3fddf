package spend

import "testing"

func TestEstimateWeight(t *testing.T) {
	tests := []struct {
		name     string
		inputs   int
		outClass ScriptClass
		outputs  int
		want     int64
	}{
		{"1 in, 2 p2sh out", 1, ScriptP2SH, 2, 570},
		{"1 in, 2 p2wpkh out", 1, ScriptP2WPKH, 2, 562},
		{"1 in, 2 p2pkh out", 1, ScriptP2PKH, 2, 586},
		{"1 in, 2 p2tr out", 1, ScriptP2TR, 2, 658},
		{"1 in, 1 p2sh out", 1, ScriptP2SH, 1, 442},
		{"2 in, 2 p2sh out", 2, ScriptP2SH, 2, 842},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateWeight(tt.inputs, tt.outClass, tt.outputs)
			if got != tt.want {
				t.Errorf("EstimateWeight(%d, %v, %d) = %d, want %d",
					tt.inputs, tt.outClass, tt.outputs, got, tt.want)
			}
		})
	}
}

func TestVBytes_QuarterPrecision(t *testing.T) {
	if got := VBytes(570); got != 142.5 {
		t.Errorf("VBytes(570) = %v, want 142.5", got)
	}
	if got := VBytes(562); got != 140.5 {
		t.Errorf("VBytes(562) = %v, want 140.5", got)
	}
}

func TestFeeForWeight(t *testing.T) {
	tests := []struct {
		name    string
		weight  int64
		feeRate float64
		want    int64
	}{
		{"fractional rate", 570, 5.82, 830},
		{"integer rate", 562, 10, 1405},
		{"zero rate", 570, 0, 0},
		{"rate of one rounds up", 570, 1, 143},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FeeForWeight(tt.weight, tt.feeRate)
			if got != tt.want {
				t.Errorf("FeeForWeight(%d, %v) = %d, want %d",
					tt.weight, tt.feeRate, got, tt.want)
			}
		})
	}
}

func TestVarIntSize(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1},
		{252, 1},
		{253, 3},
		{0xffff, 3},
		{0x10000, 5},
	}
	for _, tt := range tests {
		if got := varIntSize(tt.n); got != tt.want {
			t.Errorf("varIntSize(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
