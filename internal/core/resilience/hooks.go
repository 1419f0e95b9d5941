package resilience

// Hooks holds optional callbacks for execution lifecycle events. All fields may be
// nil. A Hooks value must not be mutated once handed to a Runner or Policy.
type Hooks struct {
	OnAttempt   func(op string, attempt int)
	OnRetry     func(op string, attempt int, err error)
	OnTimeout   func(op string, attempt int)
	OnSuccess   func(op string, attempts int)
	OnExhausted func(op string, attempts int, err error)
	OnPoolBusy  func(inFlight int64)
}

func (h *Hooks) emitAttempt(op string, attempt int) {
	if h != nil && h.OnAttempt != nil {
		h.OnAttempt(op, attempt)
	}
}

func (h *Hooks) emitRetry(op string, attempt int, err error) {
	if h != nil && h.OnRetry != nil {
		h.OnRetry(op, attempt, err)
	}
}

func (h *Hooks) emitTimeout(op string, attempt int) {
	if h != nil && h.OnTimeout != nil {
		h.OnTimeout(op, attempt)
	}
}

func (h *Hooks) emitSuccess(op string, attempts int) {
	if h != nil && h.OnSuccess != nil {
		h.OnSuccess(op, attempts)
	}
}

func (h *Hooks) emitExhausted(op string, attempts int, err error) {
	if h != nil && h.OnExhausted != nil {
		h.OnExhausted(op, attempts, err)
	}
}

func (h *Hooks) emitPoolBusy(inFlight int64) {
	if h != nil && h.OnPoolBusy != nil {
		h.OnPoolBusy(inFlight)
	}
}
