// Package project describes the logical project a caller analyzes tables within.
package project

import "tablesense/domain/core"

// Project maps logical table names to physical relations in the backing store
type Project struct {
	ID              core.ProjectID    `json:"id" db:"id"`
	Name            string            `json:"name" db:"name"`
	Tables          map[string]string `json:"tables"`
	AllowAdHocTable bool              `json:"allowAdHocTables" db:"allow_ad_hoc"`
}

// ResolveTable returns the physical relation for a logical or physical name.
// ok is false when the name is unknown and the project forbids ad-hoc tables.
func (p *Project) ResolveTable(name string) (physical string, logical string, ok bool) {
	if phys, found := p.Tables[name]; found {
		return phys, name, true
	}
	for logicalName, phys := range p.Tables {
		if phys == name {
			return phys, logicalName, true
		}
	}
	if p.AllowAdHocTable {
		return name, "", true
	}
	return "", "", false
}
