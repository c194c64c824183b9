package marketdata

// sim.go — simulador de spreads Ornstein-Uhlenbeck con saltos (OUJ).
//
//   dX = θ(μ−X)dt + σ_t·dW + J
//
// σ_t es la volatilidad base multiplicada por los regímenes activos, J es un
// salto normal que ocurre con probabilidad jump_intensity por paso, y cada
// paso añade ruido de microestructura N(0, (σ_base/10)²). dt = 1/252 (días
// hábiles). Sembrado: misma semilla, misma serie.

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// simStart ancla el calendario simulado. Fijo para que la serie sea
// reproducible de extremo a extremo, timestamps incluidos.
var simStart = time.Date(2018, time.January, 2, 0, 0, 0, 0, time.UTC)

// SimRegime multiplica la volatilidad en el rango de pasos [Start, End).
type SimRegime struct {
	Start           int     `yaml:"start"`
	End             int     `yaml:"end"`
	SigmaMultiplier float64 `yaml:"sigma_multiplier"`
}

// SimProfile son los parámetros de una simulación OUJ.
type SimProfile struct {
	T             int         `yaml:"t"`
	Theta         float64     `yaml:"theta"`
	Mu            float64     `yaml:"mu"`
	BaseSigma     float64     `yaml:"base_sigma"`
	JumpIntensity float64     `yaml:"jump_intensity"`
	JumpMean      float64     `yaml:"jump_mean"`
	JumpStd       float64     `yaml:"jump_std"`
	InitialValue  float64     `yaml:"initial_value"`
	Seed          int64       `yaml:"seed"`
	Regimes       []SimRegime `yaml:"regimes"`
}

// DefaultProfile devuelve el perfil de referencia: 2000 pasos con un régimen
// de volatilidad doble en [500, 1500).
func DefaultProfile() SimProfile {
	return SimProfile{
		T:             2000,
		Theta:         0.1,
		Mu:            0.0,
		BaseSigma:     0.1,
		JumpIntensity: 0.02,
		JumpMean:      0.0,
		JumpStd:       0.25,
		InitialValue:  0.0,
		Seed:          42,
		Regimes: []SimRegime{
			{Start: 500, End: 1500, SigmaMultiplier: 2.0},
		},
	}
}

// Validate comprueba que los parámetros del proceso sean plausibles.
func (p SimProfile) Validate() error {
	if p.T < 2 {
		return domain.InvalidParameterError{Name: "t", Value: float64(p.T), Reason: "need at least two steps"}
	}
	if p.Theta <= 0 {
		return domain.InvalidParameterError{Name: "theta", Value: p.Theta, Reason: "mean reversion speed must be > 0"}
	}
	if p.BaseSigma <= 0 {
		return domain.InvalidParameterError{Name: "base_sigma", Value: p.BaseSigma, Reason: "volatility must be > 0"}
	}
	if p.JumpIntensity < 0 || p.JumpIntensity > 1 {
		return domain.InvalidParameterError{Name: "jump_intensity", Value: p.JumpIntensity, Reason: "must be within [0, 1]"}
	}
	if p.JumpStd < 0 {
		return domain.InvalidParameterError{Name: "jump_std", Value: p.JumpStd, Reason: "must be >= 0"}
	}
	return nil
}

// simProfilesFile es la forma del YAML de perfiles.
type simProfilesFile struct {
	Profiles map[string]yaml.Node `yaml:"profiles"`
}

// SimProvider implementa ports.SeriesProvider generando series sintéticas.
// La key es el nombre de un perfil; "" equivale a "default".
type SimProvider struct {
	profiles map[string]SimProfile
}

// NewSimProvider crea un provider con el perfil default y, si path no está
// vacío, los perfiles del fichero YAML. Cada perfil parte del default: solo
// hay que declarar los campos que cambian.
func NewSimProvider(path string) (*SimProvider, error) {
	profiles := map[string]SimProfile{"default": DefaultProfile()}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("marketdata.NewSimProvider: read %q: %w", path, err)
		}
		var file simProfilesFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("marketdata.NewSimProvider: parse %q: %w", path, err)
		}
		for name, node := range file.Profiles {
			profile := DefaultProfile()
			if err := node.Decode(&profile); err != nil {
				return nil, fmt.Errorf("marketdata.NewSimProvider: profile %q: %w", name, err)
			}
			profiles[name] = profile
		}
	}

	return &SimProvider{profiles: profiles}, nil
}

// Profile devuelve el perfil registrado bajo name.
func (p *SimProvider) Profile(name string) (SimProfile, bool) {
	profile, ok := p.profiles[name]
	return profile, ok
}

// FetchSeries genera la serie del perfil pedido.
func (p *SimProvider) FetchSeries(ctx context.Context, key string) (domain.SpreadSeries, error) {
	if err := ctx.Err(); err != nil {
		return domain.SpreadSeries{}, err
	}
	if key == "" {
		key = "default"
	}
	profile, ok := p.profiles[key]
	if !ok {
		return domain.SpreadSeries{}, domain.InvalidParameterError{
			Name:   "profile",
			Reason: fmt.Sprintf("unknown profile %q", key),
		}
	}
	series, err := Generate(profile)
	if err != nil {
		return domain.SpreadSeries{}, fmt.Errorf("marketdata.SimProvider.FetchSeries: profile %q: %w", key, err)
	}
	return series, nil
}

// Generate simula el proceso OUJ del perfil y lo monta sobre un calendario
// de días hábiles.
func Generate(p SimProfile) (domain.SpreadSeries, error) {
	if err := p.Validate(); err != nil {
		return domain.SpreadSeries{}, err
	}

	values := p.simulate()
	obs := make([]domain.SpreadObservation, len(values))
	day := simStart
	for i, v := range values {
		obs[i] = domain.SpreadObservation{Time: day, Spread: v}
		day = nextBusinessDay(day)
	}
	return domain.NewSeries(obs)
}

// simulate genera la trayectoria del spread paso a paso.
func (p SimProfile) simulate() []float64 {
	const dt = 1.0 / 252
	sqrtDt := math.Sqrt(dt)
	rng := rand.New(rand.NewSource(p.Seed))

	// Volatilidad por paso: base multiplicada por los regímenes que cubren
	// el paso. Los rangos se recortan al tamaño de la serie.
	sigma := make([]float64, p.T)
	for i := range sigma {
		sigma[i] = p.BaseSigma
	}
	for _, reg := range p.Regimes {
		start := max(reg.Start, 0)
		end := min(reg.End, p.T)
		for i := start; i < end; i++ {
			sigma[i] *= reg.SigmaMultiplier
		}
	}

	noiseStd := p.BaseSigma / 10

	x := make([]float64, p.T)
	x[0] = p.InitialValue
	for t := 1; t < p.T; t++ {
		drift := p.Theta * (p.Mu - x[t-1]) * dt
		diffusion := sigma[t] * sqrtDt * rng.NormFloat64()

		jump := 0.0
		if rng.Float64() < p.JumpIntensity {
			jump = p.JumpMean + p.JumpStd*rng.NormFloat64()
		}

		noise := noiseStd * rng.NormFloat64()
		x[t] = x[t-1] + drift + diffusion + jump + noise
	}
	return x
}

// nextBusinessDay avanza un día saltando fines de semana.
func nextBusinessDay(d time.Time) time.Time {
	d = d.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
