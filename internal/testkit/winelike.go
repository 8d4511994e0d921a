package testkit

import (
	"math"
	"math/rand"

	"winefit/domain/core"
	"winefit/domain/study"
	"winefit/domain/table"
)

// WineGeneratorConfig configures the synthetic wine data generator
type WineGeneratorConfig struct {
	Rows    int     `json:"rows"`
	Seed    int64   `json:"seed"`
	NoiseSD float64 `json:"noise_sd"`
}

// DefaultWineConfig mirrors the shape of the red wine source file
func DefaultWineConfig() WineGeneratorConfig {
	return WineGeneratorConfig{
		Rows:    1599,
		Seed:    42,
		NoiseSD: 0.35,
	}
}

// WineDataGenerator produces synthetic red wine measurements whose
// quality score is driven by log volatile acidity, log sulphates, and
// log alcohol. Every other column is noise, so model selection has
// real junk to discard.
type WineDataGenerator struct {
	config WineGeneratorConfig
	rng    *rand.Rand
}

// NewWineDataGenerator creates a new wine data generator
func NewWineDataGenerator(config WineGeneratorConfig) *WineDataGenerator {
	return &WineDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the full twelve-column table.
func (g *WineDataGenerator) Generate() (*table.Table, error) {
	n := g.config.Rows
	cols := map[core.ColumnKey][]float64{}
	for _, key := range study.RawColumns() {
		cols[key] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		fixedAcidity := g.logNormal(math.Log(8.3), 0.18)
		volatileAcidity := g.logNormal(math.Log(0.52), 0.32)
		citricAcid := g.citricAcid()
		residualSugar := g.logNormal(math.Log(2.2), 0.35)
		chlorides := g.logNormal(math.Log(0.08), 0.28)
		freeSO2 := g.logNormal(math.Log(14), 0.5)
		// total rides on free, keeping the pair collinear on purpose
		totalSO2 := freeSO2*(2.2+0.4*g.rng.Float64()) + g.logNormal(math.Log(8), 0.4)
		density := 0.9967 + 0.0018*g.rng.NormFloat64()
		ph := 3.31 + 0.15*g.rng.NormFloat64()
		sulphates := g.logNormal(math.Log(0.62), 0.22)
		alcohol := g.logNormal(math.Log(10.2), 0.09)

		score := 0.4 -
			1.2*math.Log(volatileAcidity) +
			1.0*math.Log(sulphates) +
			2.1*math.Log(alcohol) +
			g.config.NoiseSD*g.rng.NormFloat64()
		quality := math.Round(clamp(score, 3, 8))

		cols[study.KeyFixedAcidity][i] = round(fixedAcidity, 1)
		cols[study.KeyVolatileAcidity][i] = round(volatileAcidity, 3)
		cols[study.KeyCitricAcid][i] = citricAcid
		cols[study.KeyResidualSugar][i] = round(residualSugar, 1)
		cols[study.KeyChlorides][i] = round(chlorides, 3)
		cols[study.KeyFreeSulfurDioxide][i] = round(freeSO2, 0)
		cols[study.KeyTotalSulfurDioxide][i] = round(totalSO2, 0)
		cols[study.KeyDensity][i] = round(density, 5)
		cols[study.KeyPH][i] = round(ph, 2)
		cols[study.KeySulphates][i] = round(sulphates, 2)
		cols[study.KeyAlcohol][i] = round(alcohol, 1)
		cols[study.KeyQuality][i] = quality
	}

	// rounding can floor a strictly positive value to zero, which would
	// poison the log transform downstream
	for _, key := range study.Default().LogColumns {
		col := cols[key]
		for i, v := range col {
			if v <= 0 {
				col[i] = 0.001
			}
		}
	}

	return table.FromColumns(study.RawColumns(), cols)
}

// citricAcid draws from a distribution with a real mass at zero, the
// reason that column is never log transformed.
func (g *WineDataGenerator) citricAcid() float64 {
	if g.rng.Float64() < 0.08 {
		return 0
	}
	return round(0.8*g.rng.Float64(), 2)
}

func (g *WineDataGenerator) logNormal(mu, sigma float64) float64 {
	return math.Exp(mu + sigma*g.rng.NormFloat64())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
