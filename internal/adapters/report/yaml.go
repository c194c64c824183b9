package report

// yaml.go — volcado YAML del informe y la comparación, para -format yaml.

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// yamlReport es el documento emitido por WriteReportYAML.
type yamlReport struct {
	Label  string            `yaml:"label"`
	Report domain.RiskReport `yaml:"report"`
}

// yamlScenario es una entrada de WriteComparisonYAML. Un escenario fallido
// lleva el error y omite el informe.
type yamlScenario struct {
	Label  string             `yaml:"label"`
	Error  string             `yaml:"error,omitempty"`
	Report *domain.RiskReport `yaml:"report,omitempty"`
}

// WriteReportYAML escribe el informe como documento YAML.
func WriteReportYAML(w io.Writer, label string, report domain.RiskReport) error {
	data, err := yaml.Marshal(yamlReport{Label: label, Report: report})
	if err != nil {
		return fmt.Errorf("report.WriteReportYAML: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("report.WriteReportYAML: %w", err)
	}
	return nil
}

// WriteComparisonYAML escribe los escenarios en orden de inserción.
func WriteComparisonYAML(w io.Writer, cmp domain.ScenarioComparison) error {
	scenarios := make([]yamlScenario, 0, cmp.Len())
	for _, res := range cmp.Results() {
		entry := yamlScenario{Label: res.Label}
		if res.Failed() {
			entry.Error = res.Err.Error()
		} else {
			report := res.Report
			entry.Report = &report
		}
		scenarios = append(scenarios, entry)
	}

	data, err := yaml.Marshal(map[string][]yamlScenario{"scenarios": scenarios})
	if err != nil {
		return fmt.Errorf("report.WriteComparisonYAML: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("report.WriteComparisonYAML: %w", err)
	}
	return nil
}
