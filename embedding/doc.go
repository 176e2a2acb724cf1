// Package embedding holds the per-session store of speaker embeddings.
//
// Entries keep their insertion order. Re-upserting an id replaces the entry
// where it already sits, so the order is the order in which ids were first
// seen. Only the speaker label of an entry can change after insertion, via
// Relabel. All vectors in a store share the dimension of the first one.
package embedding
