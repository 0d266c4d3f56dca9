// Package chunker segments byte streams and staged files into fixed-size
// chunks with stable, pre-assigned part numbers.
package chunker
