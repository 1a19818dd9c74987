// Package refine corrects AI-proposed page regions against the page's
// positioned text layer and extracts each region's reading-order text.
//
// Proposed boxes arrive approximate: they clip partial lines, bleed into a
// neighbor's text, miss descenders, or cover a two-column sub-layout. The
// pipeline runs a fixed sequence of geometric phases over the full region set
// of one page:
//
//	Phase 1     snap each box to the visual boundary of the text it owns
//	Phase 2.25  resolve residual horizontal overlap between sibling boxes
//	Phase 2.5   enforce a minimum vertical gap between stacked boxes
//	Phase 2.75  extend bottoms to cover glyph descenders
//	Phase 3a    detect two-column sub-layouts inside a finalized box
//	Phase 3b    group fragments into lines and serialize reading-order text
//
// All coordinates are in the normalized page space: 0-1000 on both axes,
// origin top-left. The pipeline is purely synchronous and deterministic; it
// performs no I/O and holds no state between runs, so callers may process
// many pages concurrently with one Pipeline.
package refine
