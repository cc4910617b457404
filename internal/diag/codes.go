package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// coverage
	CovInfo      Code = 1000
	CovOverlap   Code = 1001
	CovUncovered Code = 1002
	CovOutOfGrid Code = 1003
	CovEmptyTile Code = 1004

	// resources
	ResInfo         Code = 2000
	ResDSPBudget    Code = 2001
	ResCostMismatch Code = 2002
	ResCostBound    Code = 2003

	// imported solutions
	ImpInfo        Code = 3000
	ImpUnknownType Code = 3001
	ImpDuplicate   Code = 3002
)

var codeDescription = map[Code]string{
	UnknownCode:     "Unknown error",
	CovInfo:         "Coverage information",
	CovOverlap:      "Tiles overlap",
	CovUncovered:    "Cell is not covered",
	CovOutOfGrid:    "Tile covers a cell outside the grid",
	CovEmptyTile:    "Tile covers no cell",
	ResInfo:         "Resource information",
	ResDSPBudget:    "DSP budget exceeded",
	ResCostMismatch: "Solution cost does not match its entries",
	ResCostBound:    "Solution cost exceeds the bound",
	ImpInfo:         "Import information",
	ImpUnknownType:  "Unknown tile type index",
	ImpDuplicate:    "Duplicate placement",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("COV%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("IMP%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
