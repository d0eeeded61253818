package mediator

// Behavior is one pipeline stage wrapping handler execution with a
// cross-cutting concern. A behavior receives the continuation to the next
// stage (or the handler itself) and may short-circuit by returning without
// calling it.
type Behavior func(next Handler) Handler

// Chain composes multiple behaviors into a single behavior. The first
// argument becomes the outermost stage (executed first on the way in, last
// on the way out). This matches the intuitive reading order:
//
//	Chain(Logging, Authorization, Validation, Caching)(handler)
//
// is equivalent to:
//
//	Logging(Authorization(Validation(Caching(handler))))
//
// The order is declared once at startup and applied identically to every
// request dispatched through the mediator.
func Chain(behaviors ...Behavior) Behavior {
	return func(handler Handler) Handler {
		for i := len(behaviors) - 1; i >= 0; i-- {
			handler = behaviors[i](handler)
		}
		return handler
	}
}
