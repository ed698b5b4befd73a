// Package petri loads rate-based petri-net exchange documents.
//
// A document declares places ([State]), [Transition]s, a rate expression
// per transition, an initial expression per state, [Parameter]s with
// optional uncertainty distributions, and a [TimeSpec]. [Load] validates
// the structure and produces an immutable [Model]; expressions are kept as
// uninterpreted strings and parsed later by the ode package.
//
// The nets this schema carries are not classical token-count petri nets:
// a transition's output list only names the states whose derivatives it
// feeds, and the sign of the flux lives inside the rate expression itself
// (e.g. a literal -1* factor). See the ode package for the consequences.
package petri
