package diagnostics

import (
	"math"
	"testing"

	"winefit/domain/regression"
)

// A simple regression of y on x for x = 1..10 with a planted outlier at
// row 7. Residuals, leverages, and the reference influence values below
// were computed independently from the closed-form solution
// (b0 = 1.8, b1 = 0.5890909091, RSS = 7.6241818182).
func outlierFit() *regression.Fit {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	y := []float64{2.6, 2.8, 3.55, 4.0, 4.4, 5.15, 5.45, 9.0, 6.6, 6.85}

	const b0, b1 = 1.8, 0.5890909091
	n := len(x)

	fit := &regression.Fit{
		Spec:       regression.NewModelSpec("y", "x"),
		N:          n,
		DFResidual: n - 2,
		Residuals:  make([]float64, n),
		Fitted:     make([]float64, n),
		Leverage:   make([]float64, n),
	}

	xbar := 5.5
	sxx := 82.5
	rss := 0.0
	for i := range x {
		fit.Fitted[i] = b0 + b1*x[i]
		fit.Residuals[i] = y[i] - fit.Fitted[i]
		fit.Leverage[i] = 1.0/float64(n) + (x[i]-xbar)*(x[i]-xbar)/sxx
		rss += fit.Residuals[i] * fit.Residuals[i]
	}
	fit.RSS = rss
	fit.Sigma2 = rss / float64(fit.DFResidual)
	return fit
}

func TestInfluenceReferenceValues(t *testing.T) {
	fit := outlierFit()

	// median of F(2,8): 4*(2^(1/4)-1)
	cooksThreshold := 0.7568284600
	inf, err := NewInfluence(fit, cooksThreshold)
	if err != nil {
		t.Fatalf("NewInfluence failed: %v", err)
	}

	wantCooks := []float64{
		0.01881779, 0.00732855, 0.00004049, 0.00214347, 0.00801785,
		0.00228814, 0.01966686, 0.83968750, 0.05812781, 0.29914113,
	}
	wantDFFITS := []float64{
		0.18228360, -0.11356240, -0.00841832, -0.06135877, -0.11950081,
		-0.06343728, -0.18872692, 9.72454338, -0.32619010, -0.78097501,
	}
	for i := range wantCooks {
		if math.Abs(inf.CooksD[i]-wantCooks[i]) > 1e-6 {
			t.Errorf("CooksD[%d] = %.8f, want %.8f", i, inf.CooksD[i], wantCooks[i])
		}
		if math.Abs(inf.DFFITS[i]-wantDFFITS[i]) > 1e-6 {
			t.Errorf("DFFITS[%d] = %.8f, want %.8f", i, inf.DFFITS[i], wantDFFITS[i])
		}
	}

	// only the planted outlier crosses both cutoffs
	if len(inf.FlaggedCooks) != 1 || inf.FlaggedCooks[0] != 7 {
		t.Errorf("FlaggedCooks = %v, want [7]", inf.FlaggedCooks)
	}
	if len(inf.FlaggedDFFITS) != 1 || inf.FlaggedDFFITS[0] != 7 {
		t.Errorf("FlaggedDFFITS = %v, want [7]", inf.FlaggedDFFITS)
	}

	wantCutoff := 2 * math.Sqrt(2.0/10.0)
	if math.Abs(inf.DFFITSThreshold-wantCutoff) > 1e-12 {
		t.Errorf("DFFITSThreshold = %v, want %v", inf.DFFITSThreshold, wantCutoff)
	}

	union := inf.FlaggedEither()
	if len(union) != 1 || union[0] != 7 {
		t.Errorf("FlaggedEither = %v, want [7]", union)
	}
}

func TestStandardizedResiduals(t *testing.T) {
	fit := outlierFit()

	std := StandardizedResiduals(fit)
	wantFirst := 0.26703843
	wantOutlier := 2.80636592
	if math.Abs(std[0]-wantFirst) > 1e-6 {
		t.Errorf("standardized[0] = %.8f, want %.8f", std[0], wantFirst)
	}
	if math.Abs(std[7]-wantOutlier) > 1e-6 {
		t.Errorf("standardized[7] = %.8f, want %.8f", std[7], wantOutlier)
	}
}

func TestInfluenceInputValidation(t *testing.T) {
	fit := outlierFit()
	fit.Leverage = fit.Leverage[:3]
	if _, err := NewInfluence(fit, 0.7); err == nil {
		t.Error("Expected error for misaligned leverage slice")
	}

	tiny := &regression.Fit{
		Spec:       regression.NewModelSpec("y", "x"),
		N:          3,
		DFResidual: 1,
		Residuals:  []float64{0.1, -0.1, 0},
		Leverage:   []float64{0.5, 0.5, 0.5},
		Fitted:     []float64{1, 2, 3},
	}
	if _, err := NewInfluence(tiny, 0.7); err == nil {
		t.Error("Expected error when deletion leaves no residual df")
	}
}

func TestInfluenceLeverageOne(t *testing.T) {
	fit := outlierFit()
	fit.Leverage[2] = 1.0

	inf, err := NewInfluence(fit, 0.7568284600)
	if err != nil {
		t.Fatalf("NewInfluence failed: %v", err)
	}
	if !math.IsInf(inf.CooksD[2], 1) || !math.IsInf(inf.DFFITS[2], 1) {
		t.Error("Expected infinite influence at leverage one")
	}
}
