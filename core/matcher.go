package core

import "reflect"

// Matcher is a pure predicate over a Message used to select a handler.
// Matchers are assumed cheap, total, and side-effect free; the dispatch
// engine makes no ordering guarantee over evaluation.
type Matcher func(Message) bool

// matcherID returns a stable identity for a Matcher value, used by Registry
// to detect duplicate registration. Go funcs aren't comparable, so identity
// is taken from the underlying code pointer (spec recommendation: "registry
// keyed by a stable matcher identifier (pointer/handle)"). Matchers built
// from the same named function or the same call to a shared matcher
// constructor share an identity and will collide on registration — register
// a distinct closure per handler when that's not intended.
func matcherID(m Matcher) uintptr {
	return reflect.ValueOf(m).Pointer()
}

// All returns a Matcher that matches when every given matcher matches.
func All(matchers ...Matcher) Matcher {
	return func(msg Message) bool {
		for _, m := range matchers {
			if !m(msg) {
				return false
			}
		}
		return true
	}
}

// Any returns a Matcher that matches when at least one given matcher matches.
func Any(matchers ...Matcher) Matcher {
	return func(msg Message) bool {
		for _, m := range matchers {
			if m(msg) {
				return true
			}
		}
		return false
	}
}
