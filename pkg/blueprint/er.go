// Package blueprint derives summary artifacts from a discovery record: an
// entity-relationship outline, a process-flow outline and a size estimate.
// Every function here is pure and total.
package blueprint

import (
	"strings"

	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

const (
	placeholderEntity    = "Entity"
	placeholderAttribute = "attribute"
)

// ERDiagram renders the entities as a Mermaid erDiagram. Unnamed entities and
// attributes are emitted under placeholder names rather than dropped. It
// returns "" when the record has no entities.
func ERDiagram(r models.DiscoveryRecord) string {
	if len(r.Entities) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("erDiagram\n")
	for _, e := range r.Entities {
		b.WriteString("  ")
		b.WriteString(foldIdentifier(e.Name, placeholderEntity))
		b.WriteString(" {\n")
		for _, a := range e.Attributes {
			b.WriteString("    ")
			b.WriteString(foldIdentifier(string(a.Type), string(models.AttributeText)))
			b.WriteByte(' ')
			b.WriteString(foldIdentifier(a.Name, placeholderAttribute))
			b.WriteByte('\n')
		}
		b.WriteString("  }\n")
	}
	return b.String()
}
