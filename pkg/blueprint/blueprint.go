package blueprint

import "github.com/ekaya-inc/ekaya-discovery/pkg/models"

// Blueprint bundles every derivation of one record.
type Blueprint struct {
	ERDiagram string   `json:"erDiagram" yaml:"erDiagram"`
	FlowChart string   `json:"flowChart" yaml:"flowChart"`
	Estimate  Estimate `json:"estimate" yaml:"estimate"`
}

// Derive computes all derivations for r.
func Derive(r models.DiscoveryRecord) Blueprint {
	return Blueprint{
		ERDiagram: ERDiagram(r),
		FlowChart: FlowChart(r),
		Estimate:  EstimateSize(r),
	}
}

// DiagramKind selects one of the two diagram documents.
type DiagramKind string

const (
	DiagramER   DiagramKind = "er"
	DiagramFlow DiagramKind = "flow"
)

func (k DiagramKind) IsValid() bool {
	return k == DiagramER || k == DiagramFlow
}

// Document returns the diagram source for kind, or "" for an unknown kind.
func (b Blueprint) Document(kind DiagramKind) string {
	switch kind {
	case DiagramER:
		return b.ERDiagram
	case DiagramFlow:
		return b.FlowChart
	default:
		return ""
	}
}
