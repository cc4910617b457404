// Package exact holds the strategies that search the whole placement space
// instead of committing greedily.
//
// Both the SAT strategy and the LP export work on the same candidate set: every
// tile type of the library anchored at every grid cell, after boundary
// clipping. Tile types are indexed by a Table; the index is the <type> part of
// the m_<x>_<y>_<type> variables an external solver reports back, so a model
// exported with WriteLP and a solution read by Imported must use the same
// library.
package exact
