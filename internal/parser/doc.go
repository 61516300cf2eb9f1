// Package parser turns raw completion text into displayable sections.
//
// Two reply shapes are understood: free text split by "###" headings and a
// single flat JSON object with six fixed fields. Both degrade to placeholder
// strings instead of failing when a section is missing; only an undecodable
// JSON reply is an error.
package parser
