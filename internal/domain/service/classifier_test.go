package service

import (
	"fmt"
	"testing"

	"wallet-behavior-engine/internal/domain/entity"
)

func newTestEngines(t *testing.T) []*ClassificationEngine {
	t.Helper()
	log := newTestLogger(t)
	return NewArchetypeEngines(newTestTopology(t), NewTagDirectory(log), log)
}

func engineFor(t *testing.T, engines []*ClassificationEngine, class entity.WalletClass) *ClassificationEngine {
	t.Helper()
	for _, engine := range engines {
		if engine.Archetype() == class {
			return engine
		}
	}
	t.Fatalf("no engine for archetype %s", class)
	return nil
}

func allStages() []entity.AnalysisStage {
	return []entity.AnalysisStage{entity.StageBasic, entity.StageIntermediate, entity.StageAdvanced}
}

// consolidationWallet gathers many dust inputs into a single output per
// transaction, the canonical sweeping shape
func consolidationWallet() *entity.WalletData {
	wallet := &entity.WalletData{
		Address: "bc1sweeper",
		Chain:   "bitcoin",
		Balance: 1200,
	}
	for i := 0; i < 20; i++ {
		inputs := make([]float64, 12)
		for j := range inputs {
			inputs[j] = 5.0
		}
		wallet.Transactions = append(wallet.Transactions, entity.Transaction{
			Hash:        fmt.Sprintf("sweep-%d", i),
			Timestamp:   testObservedAt - int64(i)*86400,
			Value:       60,
			Inputs:      inputs,
			InputCount:  12,
			OutputCount: 1,
			Type:        entity.TxReceive,
		})
	}
	return wallet
}

// longTermWallet receives evenly for years and never spends
func longTermWallet() *entity.WalletData {
	wallet := &entity.WalletData{
		Address: "0xhodler",
		Chain:   "ethereum",
		Balance: 1000,
	}
	for i := 0; i < 10; i++ {
		ageDays := int64(1100 + i*100)
		wallet.Transactions = append(wallet.Transactions, entity.Transaction{
			Hash:      fmt.Sprintf("recv-%d", i),
			Timestamp: testObservedAt - ageDays*86400,
			Value:     100,
			From:      fmt.Sprintf("0xgiver%d", i),
			To:        "0xhodler",
			Type:      entity.TxReceive,
		})
	}
	return wallet
}

func TestClassifyEmptyWallet(t *testing.T) {
	engines := newTestEngines(t)
	wallet := &entity.WalletData{Address: "0xempty", Chain: "ethereum"}

	for _, engine := range engines {
		for _, stage := range allStages() {
			score := engine.Classify(wallet, stage)
			if score.Class != entity.WalletClassUnknown {
				t.Errorf("%s/%s: Class = %q, want UNKNOWN", engine.Archetype(), stage, score.Class)
			}
			if score.Confidence != 0 {
				t.Errorf("%s/%s: Confidence = %v, want 0", engine.Archetype(), stage, score.Confidence)
			}
			for name, value := range score.Metrics {
				if value != 0 {
					t.Errorf("%s/%s: metric %q = %v, want 0 for empty wallet", engine.Archetype(), stage, name, value)
				}
			}
		}
	}
}

func TestClassifyConfidenceBoundsAndDeterminism(t *testing.T) {
	engines := newTestEngines(t)
	wallets := []*entity.WalletData{consolidationWallet(), longTermWallet()}

	for _, wallet := range wallets {
		for _, engine := range engines {
			for _, stage := range allStages() {
				first := engine.Classify(wallet, stage)
				second := engine.Classify(wallet, stage)

				if first.Confidence < 0 || first.Confidence > 1 {
					t.Errorf("%s/%s: Confidence %v out of [0, 1]", engine.Archetype(), stage, first.Confidence)
				}
				for name, value := range first.Metrics {
					if value < 0 || value > 1 {
						t.Errorf("%s/%s: metric %q = %v out of [0, 1]", engine.Archetype(), stage, name, value)
					}
				}
				if first.Confidence != second.Confidence {
					t.Errorf("%s/%s: confidence not deterministic: %v vs %v",
						engine.Archetype(), stage, first.Confidence, second.Confidence)
				}
				if len(first.Metrics) != len(second.Metrics) {
					t.Errorf("%s/%s: metric sets differ between runs", engine.Archetype(), stage)
				}
			}
		}
	}
}

func TestStageMetricSuperset(t *testing.T) {
	engines := newTestEngines(t)
	wallet := longTermWallet()

	for _, engine := range engines {
		basic := engine.Classify(wallet, entity.StageBasic).Metrics
		intermediate := engine.Classify(wallet, entity.StageIntermediate).Metrics
		advanced := engine.Classify(wallet, entity.StageAdvanced).Metrics

		for name := range basic {
			if _, ok := intermediate[name]; !ok {
				t.Errorf("%s: metric %q present at BASIC but missing at INTERMEDIATE", engine.Archetype(), name)
			}
		}
		for name := range intermediate {
			if _, ok := advanced[name]; !ok {
				t.Errorf("%s: metric %q present at INTERMEDIATE but missing at ADVANCED", engine.Archetype(), name)
			}
		}
		if !(len(basic) < len(intermediate) && len(intermediate) < len(advanced)) {
			t.Errorf("%s: stage metric counts not strictly growing: %d/%d/%d",
				engine.Archetype(), len(basic), len(intermediate), len(advanced))
		}
	}
}

func TestInvalidStageFallsBackToBasic(t *testing.T) {
	engines := newTestEngines(t)
	score := engines[0].Classify(longTermWallet(), entity.AnalysisStage("WILD"))
	if score.Stage != entity.StageBasic {
		t.Errorf("Stage = %q, want fallback to %q", score.Stage, entity.StageBasic)
	}
}

func TestDustSweeperConsolidationScenario(t *testing.T) {
	engines := newTestEngines(t)
	engine := engineFor(t, engines, entity.WalletClassDustSweeper)

	score := engine.Classify(consolidationWallet(), entity.StageBasic)

	if score.Class != entity.WalletClassDustSweeper {
		t.Errorf("Class = %q, want %q", score.Class, entity.WalletClassDustSweeper)
	}

	// input_density (12-1)/49, dust_value_affinity 1-5/100, full
	// consolidation, all values small, output reduction 1-1/12
	want := (11.0/49.0 + 0.95 + 1.0 + 1.0 + (1.0 - 1.0/12.0)) / 5.0
	if !almostEqual(score.Confidence, want) {
		t.Errorf("Confidence = %v, want %v", score.Confidence, want)
	}
	if score.Metrics["consolidation_ratio"] != 1 {
		t.Errorf("consolidation_ratio = %v, want 1", score.Metrics["consolidation_ratio"])
	}
	if score.Metrics["small_tx_ratio"] != 1 {
		t.Errorf("small_tx_ratio = %v, want 1", score.Metrics["small_tx_ratio"])
	}
}

func TestHodlerLongTermScenario(t *testing.T) {
	engines := newTestEngines(t)
	engine := engineFor(t, engines, entity.WalletClassHodler)

	score := engine.Classify(longTermWallet(), entity.StageAdvanced)

	if score.Class != entity.WalletClassHodler {
		t.Errorf("Class = %q, want %q", score.Class, entity.WalletClassHodler)
	}
	// Full retention, years of dormancy, perfectly regular receives and no
	// sends saturate every group
	if !almostEqual(score.Confidence, 1.0) {
		t.Errorf("Confidence = %v, want 1.0", score.Confidence)
	}
	for _, name := range []string{"holding_period", "balance_retention", "dormancy", "outflow_restraint", "panic_resistance"} {
		if !almostEqual(score.Metrics[name], 1.0) {
			t.Errorf("metric %q = %v, want 1.0", name, score.Metrics[name])
		}
	}
}

func TestMixerUniformFlowScenario(t *testing.T) {
	engines := newTestEngines(t)
	engine := engineFor(t, engines, entity.WalletClassMixer)

	// Equal hops at fixed intervals, alternating direction
	wallet := &entity.WalletData{Address: "0xmix", Chain: "ethereum", Balance: 0.5}
	for i := 0; i < 20; i++ {
		tx := entity.Transaction{
			Hash:      fmt.Sprintf("hop-%d", i),
			Timestamp: testObservedAt - int64(i)*3600,
			Value:     1.0,
		}
		if i%2 == 0 {
			tx.From = fmt.Sprintf("0xin%d", i)
			tx.To = "0xmix"
		} else {
			tx.From = "0xmix"
			tx.To = fmt.Sprintf("0xout%d", i)
		}
		wallet.Transactions = append(wallet.Transactions, tx)
	}

	score := engine.Classify(wallet, entity.StageBasic)

	if score.Class != entity.WalletClassMixer {
		t.Errorf("Class = %q, want %q", score.Class, entity.WalletClassMixer)
	}
	// Perfect value uniformity, timing and flow symmetry; throughput sits at
	// the low end of its band
	want := (1.0 + 1.0 + 1.0 + 10.0/490.0 + 1.0) / 5.0
	if !almostEqual(score.Confidence, want) {
		t.Errorf("Confidence = %v, want %v", score.Confidence, want)
	}
}

func TestHodlerDoesNotFireOnActiveSweeper(t *testing.T) {
	engines := newTestEngines(t)
	engine := engineFor(t, engines, entity.WalletClassHodler)

	// Fresh daily activity: dormancy and holding period stay near zero
	score := engine.Classify(consolidationWallet(), entity.StageBasic)
	if score.Class == entity.WalletClassHodler {
		t.Errorf("active consolidation wallet must not classify as HODLER, confidence %v", score.Confidence)
	}
}
