// Package processor wires the learning pipeline from resolved settings and
// drives it for one text, a batch file or an interactive session. It is the
// coordinator between the cli package and every other component.
package processor
