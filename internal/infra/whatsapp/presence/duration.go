package presence

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Hints são dicas opcionais de contexto para o cálculo da duração
type Hints struct {
	MessageType string
	Complexity  string
	Urgency     string
}

// DurationModel guarda as constantes do cálculo de digitação humanizada
type DurationModel struct {
	Floor   time.Duration // duração base mínima
	PerRune time.Duration // tempo por caractere
	Min     time.Duration // limite inferior do resultado
	Max     time.Duration // limite superior do resultado

	ResearchBonus  time.Duration // search/research
	QuickFactor    float64       // quick_response/confirmation
	DetailedFactor float64       // complex_analysis/detailed_explanation

	Complexity map[string]float64
	Urgency    map[string]float64
}

// DefaultDurationModel retorna o modelo padrão: base max(1000, len*40) ms, limitado a [800, 6000] ms
func DefaultDurationModel() DurationModel {
	return DurationModel{
		Floor:          1000 * time.Millisecond,
		PerRune:        40 * time.Millisecond,
		Min:            800 * time.Millisecond,
		Max:            6000 * time.Millisecond,
		ResearchBonus:  2000 * time.Millisecond,
		QuickFactor:    0.5,
		DetailedFactor: 1.5,
		Complexity: map[string]float64{
			"low":    1.0,
			"medium": 1.2,
			"high":   1.5,
		},
		Urgency: map[string]float64{
			"low":    1.3,
			"normal": 1.0,
			"high":   0.7,
		},
	}
}

// ComputeTypingDuration calcula a duração de digitação com o modelo padrão
func ComputeTypingDuration(text string, hints Hints) time.Duration {
	return DefaultDurationModel().Compute(text, hints)
}

// Compute calcula a duração de digitação para text. Função pura.
func (m DurationModel) Compute(text string, hints Hints) time.Duration {
	messageType := strings.ToLower(strings.TrimSpace(hints.MessageType))
	if messageType == "error" {
		return m.Min
	}

	base := time.Duration(utf8.RuneCountInString(text)) * m.PerRune
	if base < m.Floor {
		base = m.Floor
	}
	ms := float64(base.Milliseconds())

	switch messageType {
	case "search", "research":
		ms += float64(m.ResearchBonus.Milliseconds())
	case "quick_response", "confirmation":
		ms *= m.QuickFactor
	case "complex_analysis", "detailed_explanation":
		ms *= m.DetailedFactor
	}

	if f, ok := m.Complexity[strings.ToLower(hints.Complexity)]; ok {
		ms *= f
	}
	if f, ok := m.Urgency[strings.ToLower(hints.Urgency)]; ok {
		ms *= f
	}

	return m.Clamp(time.Duration(math.Round(ms)) * time.Millisecond)
}

// Clamp limita d ao intervalo [Min, Max]
func (m DurationModel) Clamp(d time.Duration) time.Duration {
	if d < m.Min {
		return m.Min
	}
	if d > m.Max {
		return m.Max
	}
	return d
}
