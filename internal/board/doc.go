// Package board defines the grid data model shared by every component:
//
//   - [Board]: rows of ASCII cells, blank = dead, any other byte = a colony
//   - [Alphabet]: the ordered set of colony markers in play
//   - [Decode]/[Encode]: the newline-separated text codec used on the wire
//
// Boards produced by a generation step are treated as immutable values;
// mutation helpers exist only for seeding and pattern stamping, which operate
// on fresh clones.
package board
