package assumptions

import (
	"testing"

	"github.com/jiangshenghai57/zmodel/zerr"
)

func validPD() PDAssumption {
	return PDAssumption{
		Rho:             0.15,
		Frequency:       12,
		TimeInWatchlist: 3,
		Method:          Method1ZShift,
	}
}

func TestPDAssumption_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *PDAssumption)
		wantErr bool
	}{
		{"valid", func(a *PDAssumption) {}, false},
		{"rho negative", func(a *PDAssumption) { a.Rho = -0.01 }, true},
		{"rho at 1", func(a *PDAssumption) { a.Rho = 1 }, true},
		{"frequency invalid", func(a *PDAssumption) { a.Frequency = 7 }, true},
		{"time_in_watchlist zero", func(a *PDAssumption) { a.TimeInWatchlist = 0 }, true},
		{"method unknown", func(a *PDAssumption) { a.Method = "METHOD-3" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validPD()
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !zerr.Is(err, zerr.InvalidConfig) {
				t.Errorf("expected zerr.InvalidConfig, got %v", err)
			}
		})
	}
}

func validEAD() EADAssumption {
	return EADAssumption{Type: EADConstant, ExposureAtDefault: 1.0}
}

func TestEADAssumption_Validate(t *testing.T) {
	tests := []struct {
		name    string
		a       EADAssumption
		wantErr bool
	}{
		{"constant valid", validEAD(), false},
		{"ccf valid", EADAssumption{Type: EADCCF, CCFMethod: CCFM2, CCF: 0.4}, false},
		{"type unknown", EADAssumption{Type: "BOGUS"}, true},
		{"ccf method unknown", EADAssumption{Type: EADCCF, CCFMethod: "BOGUS"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.a.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !zerr.Is(err, zerr.InvalidConfig) {
				t.Errorf("expected zerr.InvalidConfig, got %v", err)
			}
		})
	}
}

func validLGD() LGDAssumption {
	return LGDAssumption{Type: LGDConstant, LossGivenDefault: 0.45}
}

func TestLGDAssumption_Validate(t *testing.T) {
	tests := []struct {
		name    string
		a       LGDAssumption
		wantErr bool
	}{
		{"constant valid", validLGD(), false},
		{"secured valid", LGDAssumption{Type: LGDSecured, TimeToSale: 12, ProbabilityOfCure: 0.1, LossGivenCure: 0, LossGivenWriteOff: 0.5, Floor: 0}, false},
		{"type unknown", LGDAssumption{Type: "BOGUS"}, true},
		{"probability out of range", LGDAssumption{Type: LGDConstant, ProbabilityOfCure: 1.5}, true},
		{"secured missing time_to_sale", LGDAssumption{Type: LGDSecured, TimeToSale: 0}, true},
		{"constant-growth missing time_to_sale", LGDAssumption{Type: LGDConstantGrowth, TimeToSale: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.a.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !zerr.Is(err, zerr.InvalidConfig) {
				t.Errorf("expected zerr.InvalidConfig, got %v", err)
			}
		})
	}
}

func TestStageMap_StageIndices(t *testing.T) {
	m := StageMap{
		0: [4][]int{{0}, {1}, {2}, nil},
	}

	got, err := m.StageIndices(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0][0] != 0 || got[1][0] != 1 || got[2][0] != 2 {
		t.Errorf("unexpected stage buckets: %+v", got)
	}

	_, err = m.StageIndices(9)
	if !zerr.Is(err, zerr.InvalidConfig) {
		t.Errorf("expected zerr.InvalidConfig for an unknown origination rating, got %v", err)
	}
}

func TestSegmentAssumptions_Validate(t *testing.T) {
	valid := SegmentAssumptions{ID: 7, PD: validPD(), EAD: validEAD(), LGD: validLGD()}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	broken := valid
	broken.PD.Rho = -1
	err := broken.Validate()
	if !zerr.Is(err, zerr.InvalidConfig) {
		t.Fatalf("expected zerr.InvalidConfig, got %v", err)
	}
	ee, ok := err.(*zerr.EngineError)
	if !ok {
		t.Fatalf("expected *zerr.EngineError, got %T", err)
	}
	if ee.Identifier != "segment=7" {
		t.Errorf("expected annotated Identifier segment=7, got %q", ee.Identifier)
	}
}
