// Package gmx knows the Gromacs file layout of a simulation directory and
// plans the mdrun and analysis jobs submitted for it.
package gmx

import (
	"path/filepath"
)

// Names derives the Gromacs file names of one simulation from its system
// and settings names. Paths are relative to Dir.
type Names struct {
	System   string
	Settings string
	Dir      string
}

// InPattern is "<settings>_<system>", the stem of the run input files.
func (n Names) InPattern() string { return n.Settings + "_" + n.System }

// OutPattern is "<settings>_out_<system>", the stem of the mdrun output files.
func (n Names) OutPattern() string { return n.Settings + "_out_" + n.System }

func (n Names) path(name string) string {
	if n.Dir == "" {
		return name
	}
	return filepath.Join(n.Dir, name)
}

func (n Names) MDP() string          { return n.path(n.InPattern() + ".mdp") }
func (n Names) TPR() string          { return n.path(n.InPattern() + ".tpr") }
func (n Names) Top() string          { return n.path(n.System + ".top") }
func (n Names) NDX() string          { return n.path(n.System + ".ndx") }
func (n Names) CPT() string          { return n.path(n.OutPattern() + ".cpt") }
func (n Names) EDR() string          { return n.path(n.OutPattern() + ".edr") }
func (n Names) GRO() string          { return n.path(n.OutPattern() + ".gro") }
func (n Names) Log() string          { return n.path(n.OutPattern() + ".log") }
func (n Names) TRR() string          { return n.path(n.OutPattern() + ".trr") }
func (n Names) XTCWrapped() string   { return n.path(n.OutPattern() + "_pbc_whole_mol.xtc") }
func (n Names) XTCUnwrapped() string { return n.path(n.OutPattern() + "_pbc_whole_mol_nojump.xtc") }

// Input is a kind of Gromacs file an analysis reads.
type Input int

const (
	InputEDR Input = iota
	InputNDX
	InputTRR
	InputXTCWrapped
	InputXTCUnwrapped
)

// String describes the file kind as shown in messages.
func (i Input) String() string {
	switch i {
	case InputEDR:
		return "energy file"
	case InputNDX:
		return "index file"
	case InputTRR:
		return "full-precision trajectory"
	case InputXTCWrapped:
		return "wrapped compressed trajectory"
	case InputXTCUnwrapped:
		return "unwrapped compressed trajectory"
	default:
		return "unknown file"
	}
}

// Path returns the file of kind i.
func (n Names) Path(i Input) string {
	switch i {
	case InputEDR:
		return n.EDR()
	case InputNDX:
		return n.NDX()
	case InputTRR:
		return n.TRR()
	case InputXTCWrapped:
		return n.XTCWrapped()
	case InputXTCUnwrapped:
		return n.XTCUnwrapped()
	default:
		return ""
	}
}
