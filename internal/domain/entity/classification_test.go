package entity

import "testing"

func TestDefaultRiskLevel(t *testing.T) {
	tests := []struct {
		class WalletClass
		want  RiskLevel
	}{
		{WalletClassMixer, RiskLevelHigh},
		{WalletClassDustSweeper, RiskLevelMedium},
		{WalletClassWhale, RiskLevelMedium},
		{WalletClassTrader, RiskLevelLow},
		{WalletClassHodler, RiskLevelLow},
		{WalletClassUnknown, RiskLevelUnknown},
	}

	for _, tt := range tests {
		if got := tt.class.DefaultRiskLevel(); got != tt.want {
			t.Errorf("%s.DefaultRiskLevel() = %q, want %q", tt.class, got, tt.want)
		}
	}

	if !WalletClassMixer.IsHighRisk() {
		t.Error("MIXER must be high risk")
	}
	if WalletClassHodler.IsHighRisk() {
		t.Error("HODLER must not be high risk")
	}
}

func TestResolutionPriorityOrdering(t *testing.T) {
	order := []WalletClass{
		WalletClassHodler,
		WalletClassDustSweeper,
		WalletClassTrader,
		WalletClassWhale,
		WalletClassMixer,
	}
	for i := 1; i < len(order); i++ {
		lo, hi := order[i-1], order[i]
		if lo.ResolutionPriority() >= hi.ResolutionPriority() {
			t.Errorf("%s priority %d not below %s priority %d",
				lo, lo.ResolutionPriority(), hi, hi.ResolutionPriority())
		}
	}
	if WalletClassUnknown.ResolutionPriority() != 0 {
		t.Errorf("UNKNOWN priority = %d, want 0", WalletClassUnknown.ResolutionPriority())
	}
}

func TestStageIncludes(t *testing.T) {
	tests := []struct {
		stage AnalysisStage
		group MetricGroup
		want  bool
	}{
		{StageBasic, MetricGroupPrimary, true},
		{StageBasic, MetricGroupSecondary, false},
		{StageBasic, MetricGroupContext, false},
		{StageIntermediate, MetricGroupPrimary, true},
		{StageIntermediate, MetricGroupSecondary, true},
		{StageIntermediate, MetricGroupContext, false},
		{StageAdvanced, MetricGroupPrimary, true},
		{StageAdvanced, MetricGroupSecondary, true},
		{StageAdvanced, MetricGroupContext, true},
	}

	for _, tt := range tests {
		if got := tt.stage.Includes(tt.group); got != tt.want {
			t.Errorf("%s.Includes(%s) = %v, want %v", tt.stage, tt.group, got, tt.want)
		}
	}
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		value string
		want  AnalysisStage
	}{
		{"BASIC", StageBasic},
		{"INTERMEDIATE", StageIntermediate},
		{"ADVANCED", StageAdvanced},
		{"", StageBasic},
		{"advanced", StageBasic}, // stages are case sensitive
		{"EXTREME", StageBasic},
	}

	for _, tt := range tests {
		if got := ParseStage(tt.value, StageBasic); got != tt.want {
			t.Errorf("ParseStage(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestWalletClassIsValid(t *testing.T) {
	for _, class := range AllWalletClasses() {
		if !class.IsValid() {
			t.Errorf("%s should be valid", class)
		}
	}
	if !WalletClassUnknown.IsValid() {
		t.Error("UNKNOWN is part of the closed class set")
	}
	if WalletClass("WIZARD").IsValid() {
		t.Error("arbitrary strings must not validate")
	}
}
