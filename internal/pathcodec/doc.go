// Package pathcodec owns the micro path value codec.
//
// Ownership boundary:
// - percent-decode normalization with a bounded round count
// - delimiter neutralization for '&' and '='
// - encode/decode of one query value
//
// A path that already contains the literal marker text %M1 or %M2 cannot be
// told apart from an encoded delimiter. That ambiguity is accepted.
package pathcodec
