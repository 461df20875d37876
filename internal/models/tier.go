// internal/models/tier.go
package models

import "fmt"

// TierSpec describes one sellable puzzle size. PieceCount must equal
// Rows*Cols, and the configured tier set must have pairwise distinct
// piece counts so a selection's length alone identifies its tier.
type TierSpec struct {
	Name       string `json:"name" mapstructure:"name"`
	PieceCount int    `json:"pieceCount" mapstructure:"piece_count"`
	Rows       int    `json:"rows" mapstructure:"rows"`
	Cols       int    `json:"cols" mapstructure:"cols"`
}

func (t TierSpec) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tier missing name")
	}
	if t.Rows <= 0 || t.Cols <= 0 {
		return fmt.Errorf("tier %s: rows and cols must be positive", t.Name)
	}
	if t.PieceCount != t.Rows*t.Cols {
		return fmt.Errorf("tier %s: piece count %d does not match %dx%d grid", t.Name, t.PieceCount, t.Rows, t.Cols)
	}
	return nil
}
