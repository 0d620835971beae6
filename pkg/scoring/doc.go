// Package scoring embeds a Lua interpreter and bridges scoring requests into
// a user-authored script. The script defines an optional init function, run
// once at startup, and a run function invoked per request with the raw input
// string. Script failures never escape as errors: every failure in the
// request path becomes a JSON error payload for the caller.
package scoring
