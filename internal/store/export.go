package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/cartsim/internal/dynamo"
)

type ExportData struct {
	ID             string             `json:"id,omitempty"`
	Integrator     string             `json:"integrator"`
	Dt             float64            `json:"dt"`
	Duration       float64            `json:"duration"`
	CartMass       float64            `json:"cart_mass"`
	PendulumMass   float64            `json:"pendulum_mass"`
	PendulumLength float64            `json:"pendulum_length"`
	Viscosity      float64            `json:"viscosity,omitempty"`
	Force          float64            `json:"force,omitempty"`
	Steps          int                `json:"steps"`
	Times          []float64          `json:"times"`
	States         [][]float64        `json:"states"`
	Metrics        map[string]float64 `json:"metrics"`
}

func buildExport(meta RunMetadata, result *dynamo.Result) ExportData {
	data := ExportData{
		ID:             meta.ID,
		Integrator:     meta.Integrator,
		Dt:             meta.Dt,
		Duration:       meta.Duration,
		CartMass:       meta.CartMass,
		PendulumMass:   meta.PendulumMass,
		PendulumLength: meta.PendulumLength,
		Viscosity:      meta.Viscosity,
		Force:          meta.Force,
		Steps:          len(result.Times),
		Times:          result.Times,
		States:         make([][]float64, len(result.States)),
		Metrics:        result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	return data
}

func ExportJSON(w io.Writer, meta RunMetadata, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildExport(meta, result))
}

func ExportJSONFile(path string, meta RunMetadata, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, result)
}
