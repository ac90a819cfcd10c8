package observability

import "github.com/aretw0/epsilon/pkg/domain"

// Combine chains hooks; each callback runs in argument order. Nil callbacks are skipped.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnStep = chain(out.OnStep, h.OnStep)
		out.OnDecision = chain(out.OnDecision, h.OnDecision)
		out.OnIteration = chain(out.OnIteration, h.OnIteration)
		out.OnControl = chain(out.OnControl, h.OnControl)
	}
	return out
}

func chain[E any](first, next func(*E)) func(*E) {
	switch {
	case first == nil:
		return next
	case next == nil:
		return first
	}
	return func(e *E) {
		first(e)
		next(e)
	}
}
