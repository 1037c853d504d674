// Package odrtable builds and checks odrtabs, the per-object tables used to
// find One-Definition-Rule violations at link time.
//
// A compiler front end creates one Builder per translation unit, calls Add
// for every ODR-relevant definition and embeds the bytes returned by Build
// into the object file. The link driver collects the tables of all inputs and
// calls Check, which reports every name seen with more than one content hash.
//
// Check keeps the violation-free path on fixed-width records only: symbols
// are first bucketed by NameHash, and exact names are resolved (which needs
// the compressed detail blob of the owning table) only when two records of
// one bucket disagree on their ODRHash.
package odrtable
