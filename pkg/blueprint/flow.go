package blueprint

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

const (
	placeholderTrigger = "Start"
	placeholderAction  = "Process"
	placeholderResult  = "End"
)

// FlowChart renders the flows as a Mermaid top-down graph. Flow i becomes the
// nodes Trigger{i}, Action{i} and Result{i}, so identical labels never share
// a node. A non-empty condition labels the trigger edge. It returns "" when
// the record has no flows.
func FlowChart(r models.DiscoveryRecord) string {
	if len(r.Flows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("graph TD\n")
	for i, f := range r.Flows {
		trigger := sanitizeLabel(f.Trigger, placeholderTrigger)
		action := sanitizeLabel(f.Action, placeholderAction)
		result := sanitizeLabel(f.Result, placeholderResult)

		edge := "-->"
		if cond := sanitizeLabel(f.Condition, ""); cond != "" {
			edge = fmt.Sprintf("-->|%s|", cond)
		}

		fmt.Fprintf(&b, "  Trigger%d[%s] %s Action%d(%s)\n", i, trigger, edge, i, action)
		fmt.Fprintf(&b, "  Action%d --> Result%d{%s}\n", i, i, result)
	}
	return b.String()
}
